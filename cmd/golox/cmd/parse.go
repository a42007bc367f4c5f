package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdecook/golox/internal/lox"
)

var parseCmd = &cobra.Command{
	Use:    "parse <file>",
	Short:  "Print the parsed AST for a Lox source file",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE:   runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(64)
	}

	diags := &lox.Diagnostics{}
	tokens := lox.NewScanner(string(src), diags).Scan()
	program := lox.NewParser(tokens, diags).Parse()

	if diags.HasErrors() {
		printDiagnostics(diags)
		return exitCode(65)
	}

	fmt.Println(program.String())
	return nil
}
