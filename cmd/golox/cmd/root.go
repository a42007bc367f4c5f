package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sdecook/golox/internal/lox"
)

// exitCode is returned from RunE to carry an exit code (64 usage, 65
// static error, 70 runtime error) through cobra's error path without cobra
// printing its own "Error: ..." wrapper.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit %d", int(e)) }

var rootCmd = &cobra.Command{
	Use:   "golox [script]",
	Short: "golox is a tree-walking interpreter for Lox",
	Long: `golox is a tree-walking interpreter for Lox: a dynamically typed
scripting language with first-class functions, closures, and
single-inheritance classes.

Run with no arguments to start a REPL, or pass a single .lox file to
execute it to completion.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := err.(exitCode); ok {
			return int(code)
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runRoot(_ *cobra.Command, args []string) error {
	switch len(args) {
	case 0:
		return runPrompt()
	case 1:
		return runFile(args[0])
	default:
		fmt.Fprintln(os.Stderr, "Usage: golox [script]")
		return exitCode(64)
	}
}

func runFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(64)
	}

	diags, rerr := lox.Run(string(src), os.Stdout)
	if diags.HasErrors() {
		printDiagnostics(diags)
		return exitCode(65)
	}
	if rerr != nil {
		printRuntimeError(rerr)
		return exitCode(70)
	}
	return nil
}

// runPrompt implements the REPL: read a line, append ';' if missing, run
// it, then loop. Error state (a fresh lox.Diagnostics per call to lox.Run)
// resets between lines so one bad line never poisons the rest of the
// session. Each lox.Run call also builds a fresh interpreter, so globals
// declared on one line are not visible on later lines.
func runPrompt() error {
	in := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line != "" && !strings.HasSuffix(line, ";") && !strings.HasSuffix(line, "}") {
			line += ";"
		}

		diags, rerr := lox.Run(line, os.Stdout)
		if diags.HasErrors() {
			printDiagnostics(diags)
		} else if rerr != nil {
			printRuntimeError(rerr)
		}

		fmt.Print("> ")
	}
	return nil
}

func printDiagnostics(diags *lox.Diagnostics) {
	for _, m := range diags.Messages() {
		fmt.Fprintln(os.Stderr, color.RedString(m))
	}
}

func printRuntimeError(err *lox.RuntimeError) {
	fmt.Fprintln(os.Stderr, color.RedString(err.Error()))
}
