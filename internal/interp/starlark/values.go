package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
)

// toGo converts a Starlark value into plain Go data: string, bool, int64,
// float64, []any, map[string]any, or nil for a nested None. Integers too large
// for int64 are rendered as their decimal string. Dict keys must be strings.
func toGo(v starlark.Value) (any, error) {
	switch v := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(v), nil
	case starlark.String:
		return string(v), nil
	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return i, nil
		}
		return v.String(), nil
	case starlark.Float:
		return float64(v), nil
	case *starlark.List:
		out := make([]any, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			elem, err := toGo(v.Index(i))
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, elem)
		}
		return out, nil
	case starlark.Tuple:
		out := make([]any, 0, len(v))
		for i, item := range v {
			elem, err := toGo(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, elem)
		}
		return out, nil
	case *starlark.Set:
		out := make([]any, 0, v.Len())
		iter := v.Iterate()
		defer iter.Done()
		var item starlark.Value
		for iter.Next(&item) {
			elem, err := toGo(item)
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	case *starlark.Dict:
		out := make(map[string]any, v.Len())
		for _, kv := range v.Items() {
			key, ok := starlark.AsString(kv[0])
			if !ok {
				return nil, fmt.Errorf("dict key %s: keys of type %s cannot be used as attributes, only strings", kv[0], kv[0].Type())
			}
			elem, err := toGo(kv[1])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			out[key] = elem
		}
		return out, nil
	default:
		return nil, fmt.Errorf("values of type %s cannot be used as attributes", v.Type())
	}
}
