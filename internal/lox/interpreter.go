package lox

import (
	"fmt"
	"io"
	"strconv"
	"time"
)

// Interpreter walks the AST to completion, reading the resolver's side
// table (locals) to resolve Variable/Assign/This/Super references to a
// scope depth, or falling back to the globals frame when no entry is
// recorded.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  map[Expr]int
	out     io.Writer
}

// NewInterpreter builds an interpreter writing print output to out, with
// globals seeded with the clock builtin and the side table produced by a
// prior Resolver pass.
func NewInterpreter(locals map[Expr]int, out io.Writer) *Interpreter {
	globals := NewEnvironment(nil)
	globals.Define("clock", &NativeFunction{
		Name: "clock",
		Args: 0,
		Fn: func([]Value) (Value, error) {
			return NumberValue(float64(time.Now().UnixMilli()) / 1000), nil
		},
	})
	return &Interpreter{globals: globals, env: globals, locals: locals, out: out}
}

// Interpret runs every top-level statement in sequence, stopping at the
// first error; there is no recovery across top-level statements.
func (i *Interpreter) Interpret(program Program) error {
	for _, s := range program.Stmts {
		if err := i.execute(s); err != nil {
			return err
		}
	}
	return nil
}

// executeBlock installs env as the current frame, runs stmts against it,
// and restores the previous frame on every exit path: normal completion,
// a runtime error, or a return unwind.
func (i *Interpreter) executeBlock(stmts []Stmt, env *Environment) error {
	previous := i.env
	i.env = env
	defer func() { i.env = previous }()

	for _, s := range stmts {
		if err := i.execute(s); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) execute(s Stmt) error {
	switch st := s.(type) {
	case *ExprStmt:
		_, err := i.eval(st.Expr)
		return err

	case *PrintStmt:
		v, err := i.eval(st.Expr)
		if err != nil {
			return err
		}
		fmt.Fprintln(i.out, v.String())
		return nil

	case *VarDecl:
		var v Value = NilValue{}
		if st.Initializer != nil {
			var err error
			v, err = i.eval(st.Initializer)
			if err != nil {
				return err
			}
		}
		i.env.Define(st.Name.Lexeme, v)
		return nil

	case *BlockStmt:
		return i.executeBlock(st.Stmts, NewEnvironment(i.env))

	case *IfStmt:
		cond, err := i.eval(st.Condition)
		if err != nil {
			return err
		}
		if isTruthy(cond) {
			return i.execute(st.Then)
		}
		if st.Else != nil {
			return i.execute(st.Else)
		}
		return nil

	case *WhileStmt:
		for {
			cond, err := i.eval(st.Condition)
			if err != nil {
				return err
			}
			if !isTruthy(cond) {
				return nil
			}
			if err := i.execute(st.Body); err != nil {
				return err
			}
		}

	case *ReturnStmt:
		var v Value = NilValue{}
		if st.Value != nil {
			var err error
			v, err = i.eval(st.Value)
			if err != nil {
				return err
			}
		}
		return &returnSignal{value: v}

	case *FunctionDecl:
		fn := &UserFunction{decl: st.Fun, name: st.Name.Lexeme, closure: i.env}
		i.env.Define(st.Name.Lexeme, fn)
		return nil

	case *ClassDecl:
		return i.executeClassDecl(st)

	default:
		panic("lox: interpreter: unhandled statement type")
	}
}

func (i *Interpreter) executeClassDecl(st *ClassDecl) error {
	var superclass *Class
	if st.Superclass != nil {
		v, err := i.eval(st.Superclass)
		if err != nil {
			return err
		}
		sc, ok := v.(*Class)
		if !ok {
			return newRuntimeError(st.Superclass.Name, "Superclass must be a class.")
		}
		superclass = sc
	}

	i.env.Define(st.Name.Lexeme, NilValue{})

	closureEnv := i.env
	if superclass != nil {
		closureEnv = NewEnvironment(i.env)
		closureEnv.Define("super", superclass)
	}

	methods := make(map[string]*UserFunction, len(st.Methods))
	for _, m := range st.Methods {
		methods[m.Name.Lexeme] = &UserFunction{
			decl:          m.Fun,
			name:          m.Name.Lexeme,
			closure:       closureEnv,
			isInitializer: m.Name.Lexeme == "init",
		}
	}

	classMethods := make(map[string]*UserFunction, len(st.ClassMethods))
	for _, m := range st.ClassMethods {
		classMethods[m.Name.Lexeme] = &UserFunction{decl: m.Fun, name: m.Name.Lexeme, closure: closureEnv}
	}

	metaclass := &Class{name: st.Name.Lexeme + " metaclass", methods: classMethods}
	if superclass != nil {
		metaclass.superclass = superclass.metaclass
	}

	class := &Class{name: st.Name.Lexeme, superclass: superclass, methods: methods, metaclass: metaclass}

	return i.env.Assign(st.Name, class)
}

// --- expressions ---

func (i *Interpreter) eval(e Expr) (Value, error) {
	switch ex := e.(type) {
	case *LiteralExpr:
		return i.evalLiteral(ex), nil
	case *VariableExpr:
		return i.lookUpVariable(ex.Name, ex)
	case *AssignExpr:
		return i.evalAssign(ex)
	case *UnaryExpr:
		return i.evalUnary(ex)
	case *BinaryExpr:
		return i.evalBinary(ex)
	case *LogicalExpr:
		return i.evalLogical(ex)
	case *GroupingExpr:
		return i.eval(ex.Inner)
	case *CallExpr:
		return i.evalCall(ex)
	case *GetExpr:
		return i.evalGet(ex)
	case *SetExpr:
		return i.evalSet(ex)
	case *ThisExpr:
		return i.lookUpVariable(ex.Keyword, ex)
	case *SuperExpr:
		return i.evalSuper(ex)
	case *FunctionExpr:
		return &UserFunction{decl: ex, closure: i.env}, nil
	default:
		panic("lox: interpreter: unhandled expression type")
	}
}

func (i *Interpreter) evalLiteral(e *LiteralExpr) Value {
	switch e.Token.Type {
	case NUMBER:
		f, _ := strconv.ParseFloat(e.Value, 64)
		return NumberValue(f)
	case STRING:
		return StringValue(e.Value)
	case TRUE:
		return BoolValue(true)
	case FALSE:
		return BoolValue(false)
	default:
		return NilValue{}
	}
}

// lookUpVariable resolves a name via the side table when expr was given a
// scope depth by the resolver; otherwise it is global.
func (i *Interpreter) lookUpVariable(name Token, expr Expr) (Value, error) {
	if d, ok := i.locals[expr]; ok {
		return i.env.GetAt(d, name.Lexeme), nil
	}
	return i.globals.Get(name)
}

func (i *Interpreter) evalAssign(e *AssignExpr) (Value, error) {
	v, err := i.eval(e.Expr)
	if err != nil {
		return nil, err
	}
	if d, ok := i.locals[e]; ok {
		i.env.AssignAt(d, e.Name.Lexeme, v)
		return v, nil
	}
	if err := i.globals.Assign(e.Name, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (i *Interpreter) evalUnary(e *UnaryExpr) (Value, error) {
	v, err := i.eval(e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Op.Type {
	case MINUS:
		n, ok := v.(NumberValue)
		if !ok {
			return nil, newRuntimeError(e.Op, "Operand must be a number.")
		}
		return -n, nil
	case BANG:
		return BoolValue(!isTruthy(v)), nil
	default:
		panic("lox: interpreter: unhandled unary operator")
	}
}

func (i *Interpreter) evalBinary(e *BinaryExpr) (Value, error) {
	left, err := i.eval(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.eval(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Type {
	case PLUS:
		if ln, lok := left.(NumberValue); lok {
			if rn, rok := right.(NumberValue); rok {
				return ln + rn, nil
			}
		}
		if ls, lok := left.(StringValue); lok {
			if rs, rok := right.(StringValue); rok {
				return ls + rs, nil
			}
		}
		return nil, newRuntimeError(e.Op, "Operands must be two numbers or two strings.")

	case MINUS:
		l, r, err := bothNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return l - r, nil

	case STAR:
		l, r, err := bothNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return l * r, nil

	case SLASH:
		l, r, err := bothNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		// IEEE 754 float division: divide-by-zero yields inf/nan, not an
		// error.
		return l / r, nil

	case GREATER:
		l, r, err := bothNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return BoolValue(l > r), nil

	case GREATER_EQUAL:
		l, r, err := bothNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return BoolValue(l >= r), nil

	case LESS:
		l, r, err := bothNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return BoolValue(l < r), nil

	case LESS_EQUAL:
		l, r, err := bothNumbers(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return BoolValue(l <= r), nil

	case EQUAL_EQUAL:
		return BoolValue(valuesEqual(left, right)), nil

	case BANG_EQUAL:
		return BoolValue(!valuesEqual(left, right)), nil

	default:
		panic("lox: interpreter: unhandled binary operator")
	}
}

func bothNumbers(op Token, left, right Value) (NumberValue, NumberValue, error) {
	l, lok := left.(NumberValue)
	r, rok := right.(NumberValue)
	if !lok || !rok {
		return 0, 0, newRuntimeError(op, "Operands must be numbers.")
	}
	return l, r, nil
}

func (i *Interpreter) evalLogical(e *LogicalExpr) (Value, error) {
	left, err := i.eval(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op.Type == OR {
		if isTruthy(left) {
			return left, nil
		}
	} else if !isTruthy(left) {
		return left, nil
	}
	return i.eval(e.Right)
}

func (i *Interpreter) evalCall(e *CallExpr) (Value, error) {
	callee, err := i.eval(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := i.eval(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, newRuntimeError(e.Paren, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, newRuntimeError(e.Paren, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	return fn.Call(i, args)
}

func (i *Interpreter) evalGet(e *GetExpr) (Value, error) {
	obj, err := i.eval(e.Object)
	if err != nil {
		return nil, err
	}

	switch o := obj.(type) {
	case *Instance:
		return o.get(e.Name)
	case *Class:
		// Class.method() dispatches through the class's implicit
		// metaclass, bound to the class object itself rather than to an
		// instance.
		if m := o.metaclass.findMethod(e.Name.Lexeme); m != nil {
			return m.bind(o), nil
		}
		return nil, newRuntimeError(e.Name, "Undefined property '%s'.", e.Name.Lexeme)
	default:
		return nil, newRuntimeError(e.Name, "Only instances have properties.")
	}
}

func (i *Interpreter) evalSet(e *SetExpr) (Value, error) {
	obj, err := i.eval(e.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*Instance)
	if !ok {
		return nil, newRuntimeError(e.Name, "Only instances have fields.")
	}
	v, err := i.eval(e.Value)
	if err != nil {
		return nil, err
	}
	instance.set(e.Name, v)
	return v, nil
}

func (i *Interpreter) evalSuper(e *SuperExpr) (Value, error) {
	distance := i.locals[e]
	superVal := i.env.GetAt(distance, "super")
	superclass, ok := superVal.(*Class)
	if !ok {
		return nil, newRuntimeError(e.Keyword, "'super' does not refer to a class.")
	}
	thisVal := i.env.GetAt(distance-1, "this")
	instance, ok := thisVal.(*Instance)
	if !ok {
		return nil, newRuntimeError(e.Keyword, "'this' does not refer to an instance.")
	}

	method := superclass.findMethod(e.Method.Lexeme)
	if method == nil {
		return nil, newRuntimeError(e.Method, "Undefined property '%s'.", e.Method.Lexeme)
	}
	return method.bind(instance), nil
}
