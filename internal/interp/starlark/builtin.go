package starlark

import (
	"fmt"

	"github.com/vk/buildparse/internal/capture"
	"go.starlark.net/starlark"
)

// newRuleBuiltin exposes rule as a keywords-only Starlark function that
// returns None.
func newRuleBuiltin(name string, rule *capture.Rule) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		converted := make([]capture.Argument, 0, len(kwargs))
		for _, kv := range kwargs {
			key, ok := starlark.AsString(kv[0])
			if !ok {
				return nil, fmt.Errorf("%s: keyword is not a string: %s", fn.Name(), kv[0])
			}
			if kv[1] == starlark.None {
				converted = append(converted, capture.None(key))
				continue
			}
			value := kv[1]
			converted = append(converted, capture.Deferred(key, func() (any, error) {
				return toGo(value)
			}))
		}

		if err := rule.Invoke(len(args), converted); err != nil {
			return nil, err
		}
		return starlark.None, nil
	})
}
