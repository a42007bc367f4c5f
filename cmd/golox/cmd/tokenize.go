package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdecook/golox/internal/lox"
)

// tokenizeCmd is a debug aid: it exposes the scanner stage in isolation
// without re-deriving it in a throwaway script.
var tokenizeCmd = &cobra.Command{
	Use:    "tokenize <file>",
	Short:  "Print the token sequence for a Lox source file",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE:   runTokenize,
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
}

func runTokenize(_ *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(64)
	}

	diags := &lox.Diagnostics{}
	scanner := lox.NewScanner(string(src), diags)
	for _, tok := range scanner.Scan() {
		fmt.Println(tok)
	}

	if diags.HasErrors() {
		printDiagnostics(diags)
		return exitCode(65)
	}
	return nil
}
