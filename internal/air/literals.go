package air

import (
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
	"github.com/tidwall/gjson"
)

// evalLit decodes a lit(type, value) node. List elements, set elements
// and map entries are themselves {type, value} descriptors, decoded
// recursively, normalizing to typed values as §4.1 requires.
func (e *Evaluator) evalLit(expr document.Expr) (value.Value, error) {
	return decodeTyped(expr.Str("type"), expr.Field("value"))
}

func decodeTyped(kind string, raw gjson.Result) (value.Value, error) {
	switch kind {
	case "void":
		return value.Void{}, nil
	case "bool":
		return value.Bool(raw.Bool()), nil
	case "int":
		return value.Int(raw.Int()), nil
	case "float":
		return value.Float(raw.Float()), nil
	case "string":
		return value.Str(raw.String()), nil
	case "list":
		items := raw.Array()
		list := make([]value.Value, len(items))
		for i, it := range items {
			v, err := decodeTyped(it.Get("type").String(), it.Get("value"))
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		return value.NewList(list...), nil
	case "set":
		items := raw.Array()
		set := value.NewSet()
		for _, it := range items {
			v, err := decodeTyped(it.Get("type").String(), it.Get("value"))
			if err != nil {
				return nil, err
			}
			set.Add(v)
		}
		return set, nil
	case "map":
		entries := raw.Array()
		m := value.NewMap()
		for _, it := range entries {
			k := it.Get("key")
			vv := it.Get("value")
			key, err := decodeTyped(k.Get("type").String(), k.Get("value"))
			if err != nil {
				return nil, err
			}
			val, err := decodeTyped(vv.Get("type").String(), vv.Get("value"))
			if err != nil {
				return nil, err
			}
			m.Set(key, val)
		}
		return m, nil
	case "option":
		if !raw.Exists() || raw.Type == gjson.Null {
			return value.None(), nil
		}
		inner, err := decodeTyped(raw.Get("type").String(), raw.Get("value"))
		if err != nil {
			return nil, err
		}
		return value.Some(inner), nil
	case "undefined":
		return value.Undefined{}, nil
	default:
		return errVal(ierr.TypeError, "unsupported literal type %q", kind), nil
	}
}
