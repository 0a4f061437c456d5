package vm

// ExtractElements returns the elements produced by iterating v.
//
// Lists and tuples yield their elements, bytes yield one int per byte,
// and str yields one single-character str per code point. The returned
// slice is fresh; v is not modified.
func (ctx *Context) ExtractElements(v Value) ([]Value, error) {
	switch p := v.payload.(type) {
	case ListPayload:
		return append([]Value(nil), p.Elements...), nil
	case TuplePayload:
		return append([]Value(nil), p.Elements...), nil
	case BytesPayload:
		out := make([]Value, len(p.Value))
		for i, b := range p.Value {
			out[i] = ctx.NewIntFromInt64(int64(b))
		}
		return out, nil
	case StrPayload:
		out := make([]Value, 0, len(p.Value))
		for _, r := range p.Value {
			out = append(out, ctx.NewStr(string(r)))
		}
		return out, nil
	}
	return nil, ctx.NewTypeError("'%s' object is not iterable", typeName(v))
}
