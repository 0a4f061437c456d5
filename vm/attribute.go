package vm

// ---------------------------------------------------------------------------
// Attribute protocol
// ---------------------------------------------------------------------------

// GetAttr resolves the attribute name on v.
//
// Lookup order:
//  1. the instance dictionary, for plain objects
//  2. for type objects, the represented class and its MRO (returned unbound)
//  3. the MRO of v's class; builtins found here are bound to v
func (ctx *Context) GetAttr(v Value, name string) (Value, error) {
	if inst, ok := v.payload.(InstancePayload); ok {
		if attr, ok := inst.Dict[name]; ok {
			return attr, nil
		}
	}

	cls := v.TypeClass()
	if cls != nil {
		if attr, _, ok := ctx.attrs.Lookup(cls, name); ok {
			return attr, nil
		}
	}

	if attr, ok := ctx.lookupSpecial(v, name); ok {
		return attr, nil
	}

	if cls != nil {
		return nil, ctx.NewAttributeError("type object '%s' has no attribute '%s'", cls.Name, name)
	}
	return nil, ctx.NewAttributeError("'%s' object has no attribute '%s'", typeName(v), name)
}

// HasAttr reports whether GetAttr would succeed.
func (ctx *Context) HasAttr(v Value, name string) bool {
	_, err := ctx.GetAttr(v, name)
	return err == nil
}

// lookupSpecial resolves name on v's class only, binding builtins to v.
// Special methods (__eq__, __hash__, ...) are always resolved this way so
// that calling them on a type object reaches the metaclass, not the
// methods the type defines for its instances.
func (ctx *Context) lookupSpecial(v Value, name string) (Value, bool) {
	if v.class == nil {
		return nil, false
	}
	attr, _, ok := ctx.attrs.Lookup(v.class, name)
	if !ok {
		return nil, false
	}
	if attr.Kind() == KindBuiltin {
		return ctx.newBoundMethod(v, attr), true
	}
	return attr, true
}

// SetAttr stores value under name on v.
//
// Plain objects store the attribute in their own dictionary. Type objects
// store it in the class's attribute table unless the class is a frozen
// built-in. Other values have no writable attributes.
func (ctx *Context) SetAttr(v Value, name string, value Value) error {
	switch p := v.payload.(type) {
	case InstancePayload:
		p.Dict[name] = value
		return nil
	case TypePayload:
		return ctx.define(p.Class, name, value)
	}
	return ctx.NewAttributeError("'%s' object has no attribute '%s'", typeName(v), name)
}

// DelAttr removes name from v's dictionary or from a mutable class.
func (ctx *Context) DelAttr(v Value, name string) error {
	switch p := v.payload.(type) {
	case InstancePayload:
		if _, ok := p.Dict[name]; ok {
			delete(p.Dict, name)
			return nil
		}
	case TypePayload:
		if p.Class.frozen {
			return ctx.NewTypeError("cannot delete '%s' attribute of immutable type '%s'", name, p.Class.Name)
		}
		if p.Class.dict.Has(name) {
			p.Class.dict.Delete(name)
			ctx.attrs.Invalidate()
			return nil
		}
	}
	return ctx.NewAttributeError("'%s' object has no attribute '%s'", typeName(v), name)
}
