package vm

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zeebo/xxh3"
)

// ---------------------------------------------------------------------------
// str
// ---------------------------------------------------------------------------

type strImpl struct{}

func (strImpl) Equal(ctx *Context, a, b Value) (bool, error) {
	if !IsInstance(b, ctx.StrType) {
		return false, nil
	}
	return a.Str() == b.Str(), nil
}

func (strImpl) Hash(_ *Context, v Value) (*big.Int, error) {
	return new(big.Int).SetUint64(xxh3.HashString(v.Str())), nil
}

func (strImpl) Repr(_ *Context, v Value) (string, error) {
	return quoteStr(v.Str()), nil
}

func (strImpl) ConstructSpec() ArgSpec {
	return ArgSpec{Optional: []Param{{Name: "object"}}}
}

func (strImpl) Construct(ctx *Context, cls *Class, args *Bound) (Value, error) {
	s := ""
	if obj, ok := args.Optional("object"); ok {
		if IsInstance(obj, ctx.StrType) {
			s = obj.Str()
		} else {
			r, err := ctx.Repr(obj)
			if err != nil {
				return nil, err
			}
			s = r
		}
	}
	if cls == ctx.StrType {
		return ctx.NewStr(s), nil
	}
	return ctx.NewValue(cls, StrPayload{Value: s})
}

func (ctx *Context) registerStringPrimitives() {
	c := ctx.StrType
	if err := ctx.RegisterType(c, strImpl{}); err != nil {
		panic("vm: " + err.Error())
	}

	// __len__ - number of code points
	ctx.mustDefineBuiltin(c, "__len__", selfOnly(c), func(ctx *Context, args *Bound) (Value, error) {
		return ctx.NewIntFromInt64(int64(utf8.RuneCountInString(args.At(0).Str()))), nil
	})
}

// quoteStr renders s as a quoted string literal. Single quotes are used
// unless s contains a single quote and no double quote.
func quoteStr(s string) string {
	quote := byte('\'')
	if strings.IndexByte(s, '\'') >= 0 && strings.IndexByte(s, '"') < 0 {
		quote = '"'
	}

	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == rune(quote) || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case unicode.IsPrint(r):
			sb.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&sb, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			fmt.Fprintf(&sb, `\U%08x`, r)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}
