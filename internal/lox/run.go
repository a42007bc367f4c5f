package lox

import "io"

// Run drives the full pipeline over a single source string: scan, parse,
// resolve, interpret. Print statements write to out. It returns the
// accumulated static Diagnostics (scan/parse/resolve errors; non-empty
// means interpretation never ran) and, separately, a *RuntimeError if
// interpretation started but failed. Callers (cmd/golox) map these onto
// exit codes 65 and 70 respectively.
func Run(source string, out io.Writer) (*Diagnostics, *RuntimeError) {
	diags := &Diagnostics{}

	scanner := NewScanner(source, diags)
	tokens := scanner.Scan()

	parser := NewParser(tokens, diags)
	program := parser.Parse()

	if diags.HasErrors() {
		return diags, nil
	}

	resolver := NewResolver(diags)
	resolver.Resolve(program)

	if diags.HasErrors() {
		return diags, nil
	}

	interp := NewInterpreter(resolver.Locals(), out)
	if err := interp.Interpret(program); err != nil {
		if rerr, ok := err.(*RuntimeError); ok {
			return diags, rerr
		}
		// A *returnSignal escaping to the top level would mean the
		// resolver failed to reject a top-level return; it never should,
		// but report it rather than panic if it somehow does.
		return diags, &RuntimeError{Message: err.Error(), Line: 0}
	}
	return diags, nil
}
