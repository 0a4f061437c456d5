package vm

import (
	"math/big"
	"strings"
)

// intValue returns the integer held by an int or bool value.
func intValue(v Value) (*big.Int, bool) {
	switch p := v.payload.(type) {
	case IntPayload:
		return p.Value, true
	case BoolPayload:
		if p.Value {
			return big.NewInt(1), true
		}
		return big.NewInt(0), true
	}
	return nil, false
}

// ToInteger converts v to an integer the way int(v, base) does.
//
// int and bool values convert directly. str and bytes values are parsed
// as text in the given base (2-36, or 0 to infer the base from a 0x/0o/0b
// prefix); surrounding whitespace and single underscores between digits
// are accepted. Unparsable text is a ValueError, any other type a TypeError.
func (ctx *Context) ToInteger(v Value, base int) (*big.Int, error) {
	if base != 0 && (base < 2 || base > 36) {
		return nil, ctx.NewValueError("int() base must be >= 2 and <= 36, or 0")
	}

	var text string
	switch p := v.payload.(type) {
	case IntPayload, BoolPayload:
		n, _ := intValue(v)
		return new(big.Int).Set(n), nil
	case StrPayload:
		text = p.Value
	case BytesPayload:
		text = string(p.Value)
	default:
		return nil, ctx.NewTypeError("int() argument must be a string, a bytes-like object or a real number, not '%s'", typeName(v))
	}

	n, ok := parseInt(text, base)
	if !ok {
		return nil, ctx.NewValueError("invalid literal for int() with base %d: %s", base, quoteStr(text))
	}
	return n, nil
}

func parseInt(text string, base int) (*big.Int, bool) {
	s := strings.TrimSpace(text)
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}

	if base == 0 {
		// big.Int handles prefixes and underscores itself when base is 0,
		// but accepts a leading zero as octal, which int() does not.
		if len(s) > 1 && s[0] == '0' && strings.IndexByte("xXoObB", s[1]) < 0 {
			if strings.Trim(s, "0_") != "" {
				return nil, false
			}
		}
		return new(big.Int).SetString(sign+s, 0)
	}

	s = trimBasePrefix(s, base)
	if s == "" || s[0] == '_' || s[len(s)-1] == '_' || strings.Contains(s, "__") {
		return nil, false
	}
	return new(big.Int).SetString(sign+strings.ReplaceAll(s, "_", ""), base)
}

// trimBasePrefix strips a 0x/0o/0b prefix that matches base. A prefix may
// be followed by an underscore.
func trimBasePrefix(s string, base int) string {
	if len(s) < 2 || s[0] != '0' {
		return s
	}
	var prefix byte
	switch base {
	case 16:
		prefix = 'x'
	case 8:
		prefix = 'o'
	case 2:
		prefix = 'b'
	default:
		return s
	}
	if s[1] == prefix || s[1] == prefix-'a'+'A' {
		s = s[2:]
		return strings.TrimPrefix(s, "_")
	}
	return s
}
