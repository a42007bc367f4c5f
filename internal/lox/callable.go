package lox

import "fmt"

// Callable is any Value that can appear on the left of a call expression:
// native functions, user-defined functions/methods, and classes (whose Call
// constructs an instance).
type Callable interface {
	Value
	Arity() int
	Call(interp *Interpreter, args []Value) (Value, error)
}

// NativeFunction wraps a host-provided builtin, such as clock, in the
// Callable interface.
type NativeFunction struct {
	Name string
	Args int
	Fn   func(args []Value) (Value, error)
}

func (*NativeFunction) valueNode()       {}
func (n *NativeFunction) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }
func (n *NativeFunction) Arity() int     { return n.Args }

func (n *NativeFunction) Call(_ *Interpreter, args []Value) (Value, error) { return n.Fn(args) }

// UserFunction is a function value produced by a FunctionDecl, a method
// body, or an anonymous FunctionExpr: parameters, body, and the environment
// frame captured at the point it was evaluated. isInitializer marks an
// "init" method, which always yields "this" regardless of its own return
// value.
type UserFunction struct {
	decl          *FunctionExpr
	name          string // "" for an anonymous "fun(...) {...}" expression
	closure       *Environment
	isInitializer bool
}

func (*UserFunction) valueNode() {}

func (f *UserFunction) String() string {
	if f.name == "" {
		return "<fn>"
	}
	return "<fn " + f.name + ">"
}

func (f *UserFunction) Arity() int { return len(f.decl.Params) }

func (f *UserFunction) Call(interp *Interpreter, args []Value) (Value, error) {
	env := NewEnvironment(f.closure)
	for i, param := range f.decl.Params {
		env.Define(param.Lexeme, args[i])
	}

	err := interp.executeBlock(f.decl.Body, env)
	ret, isReturn := err.(*returnSignal)
	if err != nil && !isReturn {
		return nil, err
	}
	if f.isInitializer {
		// An initializer yields the instance even through a bare "return;";
		// "return <value>;" inside init is rejected at resolve time.
		return f.closure.GetAt(0, "this"), nil
	}
	if isReturn {
		return ret.value, nil
	}
	return NilValue{}, nil
}

// bind produces a fresh function value whose capture frame is a new
// environment enclosing f's own closure and containing a single binding
// "this" -> receiver. Used both for ordinary instance methods and for
// class methods bound to a class object instead of an instance.
func (f *UserFunction) bind(this Value) *UserFunction {
	env := NewEnvironment(f.closure)
	env.Define("this", this)
	return &UserFunction{decl: f.decl, name: f.name, closure: env, isInitializer: f.isInitializer}
}

// returnSignal is the non-local unwind carrying a return statement's value
// up to the enclosing function call. It satisfies the error
// interface purely so it can travel through the same execute/eval return
// paths as a genuine failure, but it is never surfaced to the user: Run
// (see run.go) only ever forwards *RuntimeError to its caller.
type returnSignal struct {
	value Value
}

func (r *returnSignal) Error() string { return "return" }
