package lox

// functionKind tracks what kind of function body the resolver is currently
// inside, so return-statement rules can be enforced.
type functionKind int

const (
	fnNone functionKind = iota
	fnFunction
	fnInitializer
	fnMethod
)

// classKind tracks class-resolution context for "this"/"super" checks.
type classKind int

const (
	classNone classKind = iota
	classClass
	classSubclass
)

// varState tracks a name within a scope: declared (present in the map but
// not yet defined, so a read of it is the self-initializer error) or
// defined (fully usable).
type varState struct {
	defined bool
}

// Resolver is the static pass between parsing and evaluation: it assigns
// every non-global Variable/Assign/This/Super expression a scope depth,
// recorded in Locals, and reports binding-time errors (self-referential
// initializers, bad return/this/super placement, duplicate locals,
// self-inheriting classes) into Diagnostics.
type Resolver struct {
	scopes  []map[string]*varState
	locals  map[Expr]int
	fnKind  functionKind
	clsKind classKind
	diags   *Diagnostics
}

func NewResolver(diags *Diagnostics) *Resolver {
	return &Resolver{
		locals: make(map[Expr]int),
		diags:  diags,
	}
}

// Locals returns the resolver's side table: expression identity -> scope
// depth. Entries are only present for locally-bound references; anything
// absent is treated as global by the interpreter.
func (r *Resolver) Locals() map[Expr]int { return r.locals }

func (r *Resolver) Resolve(program Program) {
	for _, s := range program.Stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) beginScope() { r.scopes = append(r.scopes, map[string]*varState{}) }
func (r *Resolver) endScope()   { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *Resolver) declare(name Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name.Lexeme]; ok {
		r.diags.reportToken(name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = &varState{defined: false}
}

func (r *Resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = &varState{defined: true}
}

func (r *Resolver) declareDefine(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = &varState{defined: true}
}

// resolveLocal walks the scope stack from innermost outward; a hit at depth
// d from the top records (expr -> d). No entry means the reference is
// global.
func (r *Resolver) resolveLocal(expr Expr, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *Resolver) resolveFunction(fn *FunctionExpr, kind functionKind) {
	enclosing := r.fnKind
	r.fnKind = kind

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param.Lexeme)
	}
	for _, s := range fn.Body {
		r.resolveStmt(s)
	}
	r.endScope()

	r.fnKind = enclosing
}

// --- statements ---

func (r *Resolver) resolveStmt(s Stmt) {
	switch st := s.(type) {
	case *BlockStmt:
		r.beginScope()
		for _, d := range st.Stmts {
			r.resolveStmt(d)
		}
		r.endScope()

	case *VarDecl:
		r.declare(st.Name)
		if st.Initializer != nil {
			r.resolveExpr(st.Initializer)
		}
		r.define(st.Name.Lexeme)

	case *FunctionDecl:
		r.declare(st.Name)
		r.define(st.Name.Lexeme)
		r.resolveFunction(st.Fun, fnFunction)

	case *ClassDecl:
		enclosingClass := r.clsKind
		r.clsKind = classClass

		r.declare(st.Name)
		r.define(st.Name.Lexeme)

		if st.Superclass != nil {
			if st.Superclass.Name.Lexeme == st.Name.Lexeme {
				r.diags.reportToken(st.Superclass.Name, "A class can't inherit from itself.")
			}
			r.clsKind = classSubclass
			r.resolveExpr(st.Superclass)

			r.beginScope()
			r.declareDefine("super")
		}

		r.beginScope()
		r.declareDefine("this")

		for _, m := range st.Methods {
			kind := fnMethod
			if m.Name.Lexeme == "init" {
				kind = fnInitializer
			}
			r.resolveFunction(m.Fun, kind)
		}
		for _, m := range st.ClassMethods {
			r.resolveFunction(m.Fun, fnMethod)
		}

		r.endScope()
		if st.Superclass != nil {
			r.endScope()
		}

		r.clsKind = enclosingClass

	case *ExprStmt:
		r.resolveExpr(st.Expr)

	case *PrintStmt:
		r.resolveExpr(st.Expr)

	case *IfStmt:
		r.resolveExpr(st.Condition)
		r.resolveStmt(st.Then)
		if st.Else != nil {
			r.resolveStmt(st.Else)
		}

	case *WhileStmt:
		r.resolveExpr(st.Condition)
		r.resolveStmt(st.Body)

	case *ReturnStmt:
		if r.fnKind == fnNone {
			r.diags.reportToken(st.Keyword, "Can't return from top-level code.")
		}
		if st.Value != nil {
			if r.fnKind == fnInitializer {
				r.diags.reportToken(st.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpr(st.Value)
		}

	default:
		panic("lox: resolver: unhandled statement type")
	}
}

// --- expressions ---

func (r *Resolver) resolveExpr(e Expr) {
	switch ex := e.(type) {
	case *VariableExpr:
		if len(r.scopes) > 0 {
			if state, ok := r.scopes[len(r.scopes)-1][ex.Name.Lexeme]; ok && !state.defined {
				r.diags.reportToken(ex.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(ex, ex.Name.Lexeme)

	case *AssignExpr:
		r.resolveExpr(ex.Expr)
		r.resolveLocal(ex, ex.Name.Lexeme)

	case *UnaryExpr:
		r.resolveExpr(ex.Operand)

	case *BinaryExpr:
		r.resolveExpr(ex.Left)
		r.resolveExpr(ex.Right)

	case *LogicalExpr:
		r.resolveExpr(ex.Left)
		r.resolveExpr(ex.Right)

	case *GroupingExpr:
		r.resolveExpr(ex.Inner)

	case *CallExpr:
		r.resolveExpr(ex.Callee)
		for _, a := range ex.Args {
			r.resolveExpr(a)
		}

	case *GetExpr:
		r.resolveExpr(ex.Object)

	case *SetExpr:
		r.resolveExpr(ex.Value)
		r.resolveExpr(ex.Object)

	case *ThisExpr:
		if r.clsKind == classNone {
			r.diags.reportToken(ex.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(ex, "this")

	case *SuperExpr:
		switch r.clsKind {
		case classNone:
			r.diags.reportToken(ex.Keyword, "Can't use 'super' outside of a class.")
			return
		case classClass:
			r.diags.reportToken(ex.Keyword, "Can't use 'super' in a class with no superclass.")
			return
		}
		r.resolveLocal(ex, "super")

	case *FunctionExpr:
		r.resolveFunction(ex, fnFunction)

	case *LiteralExpr:
		// nothing to resolve

	default:
		panic("lox: resolver: unhandled expression type")
	}
}
