package lox

// Class is a Lox class object: name, optional superclass, and its method
// map. metaclass holds the class-method map; it is itself a *Class so that
// GetExpr on a class object can reuse the same findMethod/bind machinery
// used for instances.
type Class struct {
	name       string
	superclass *Class
	methods    map[string]*UserFunction
	metaclass  *Class
}

func (*Class) valueNode()       {}
func (c *Class) String() string { return c.name }

// findMethod walks the superclass chain; the zero value (nil) means "not
// found" at every call site that uses it.
func (c *Class) findMethod(name string) *UserFunction {
	if m, ok := c.methods[name]; ok {
		return m
	}
	if c.superclass != nil {
		return c.superclass.findMethod(name)
	}
	return nil
}

// Arity mirrors the arity of "init" if present; a class with no
// initializer is called with zero arguments.
func (c *Class) Arity() int {
	if init := c.findMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Call constructs an instance and, if an "init" method exists, runs it
// against the new instance; the call's result is always the instance
// itself.
func (c *Class) Call(interp *Interpreter, args []Value) (Value, error) {
	instance := &Instance{class: c, fields: make(map[string]Value)}
	if init := c.findMethod("init"); init != nil {
		if _, err := init.bind(instance).Call(interp, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Instance is a runtime object: a reference to its class and a mutable
// field map. Fields shadow methods on lookup; assignment to an instance
// always writes a field, never a method.
type Instance struct {
	class  *Class
	fields map[string]Value
}

func (*Instance) valueNode()       {}
func (i *Instance) String() string { return i.class.name + " instance" }

func (i *Instance) get(name Token) (Value, error) {
	if v, ok := i.fields[name.Lexeme]; ok {
		return v, nil
	}
	if m := i.class.findMethod(name.Lexeme); m != nil {
		return m.bind(i), nil
	}
	return nil, newRuntimeError(name, "Undefined property '%s'.", name.Lexeme)
}

func (i *Instance) set(name Token, value Value) {
	i.fields[name.Lexeme] = value
}
