// Command justhtml is a diagnostic CLI exposing the HTML and CSS
// tokenizer streams directly, for debugging malformed input and for
// comparing token sequences against the WHATWG/CSS Syntax 3 reference
// algorithms.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/corehtml/corehtml/css"
	"github.com/corehtml/corehtml/stream"
)

var version = "dev"

var log = logrus.New()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:     "justhtml",
		Short:   "Inspect HTML and CSS tokenizer output",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "raise the CLI logger to debug level (the tokenize commands log no diagnostics)")
	root.AddCommand(newTokenizeHTMLCmd(), newTokenizeCSSCmd())
	return root
}

func newTokenizeHTMLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize-html [file]",
		Short: "Print the HTML tokenizer event stream for a file (or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args)
			if err != nil {
				return err
			}
			for ev := range stream.Stream(string(input)) {
				switch ev.Type {
				case stream.StartTagEvent:
					fmt.Printf("StartTag %s %v\n", ev.Name, ev.Attrs)
				case stream.EndTagEvent:
					fmt.Printf("EndTag %s\n", ev.Name)
				case stream.TextEvent:
					fmt.Printf("Text %q\n", ev.Data)
				case stream.CommentEvent:
					fmt.Printf("Comment %q\n", ev.Data)
				case stream.DoctypeEvent:
					fmt.Printf("Doctype %s %q %q\n", ev.Name, ev.PublicID, ev.SystemID)
				}
			}
			return nil
		},
	}
}

func newTokenizeCSSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize-css [file]",
		Short: "Print the CSS Syntax 3 token stream for a file (or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args)
			if err != nil {
				return err
			}
			tok := css.New(string(input))
			for {
				t := tok.Next()
				printCSSToken(t)
				if t.Kind == css.EOF {
					break
				}
			}
			return nil
		},
	}
}

func printCSSToken(t css.Token) {
	switch t.Kind {
	case css.Ident, css.Function, css.AtKeyword, css.String, css.BadString, css.URL, css.BadURL:
		fmt.Printf("%s %q\n", t.Kind, t.Value)
	case css.Hash:
		fmt.Printf("%s %q flag=%v\n", t.Kind, t.Value, t.HashFlag)
	case css.Delim:
		fmt.Printf("%s %q\n", t.Kind, string(t.Delim))
	case css.Number, css.Percentage:
		fmt.Printf("%s %v\n", t.Kind, t.Number)
	case css.Dimension:
		fmt.Printf("%s %v%s\n", t.Kind, t.Number, t.Unit)
	default:
		fmt.Println(t.Kind)
	}
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}
