// Command example parses a wikitext document from stdin (or a file named
// on the command line) and prints each top-level block of the resulting
// tree on its own line, in Go's %+v form. It exists to exercise wikitext.Parse
// end to end, the same way the engine's own rpn/sexp examples exercise
// peg.Match directly.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gowiki/wikitext/wikitext"
)

func main() {
	var src []byte
	var err error
	if len(os.Args) > 1 {
		src, err = os.ReadFile(os.Args[1])
	} else {
		src, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "example:", err)
		os.Exit(1)
	}

	doc, diags, err := wikitext.Parse(string(src))
	if err != nil {
		fmt.Fprintln(os.Stderr, "example: parse failed:", err)
		os.Exit(1)
	}

	for _, d := range diags {
		fmt.Fprintln(os.Stderr, "diagnostic:", d.String())
	}

	if doc.Redirect != nil {
		fmt.Printf("Redirect -> %s\n", doc.Redirect.Target)
	}
	for _, b := range doc.Blocks {
		printNode(b, 0)
	}
}

func printNode(n wikitext.Node, depth int) {
	fmt.Printf("%s%+v\n", strings.Repeat("  ", depth), n)
}
