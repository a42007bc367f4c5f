package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdecook/golox/internal/lox"
)

var resolveCmd = &cobra.Command{
	Use:    "resolve <file>",
	Short:  "Resolve a Lox source file and print the local-variable side table",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE:   runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(_ *cobra.Command, args []string) error {
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

	resolver := lox.NewResolver(diags)
	resolver.Resolve(program)
	if diags.HasErrors() {
		printDiagnostics(diags)
		return exitCode(65)
	}

	fmt.Printf("%d locally-resolved reference(s)\n", len(resolver.Locals()))
	return nil
}
