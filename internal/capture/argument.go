// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package capture

// Argument is one keyword argument of a rule invocation.
type Argument struct {
	// Name is the keyword as written in the build file, e.g. "exported_deps".
	Name string

	// Value is the converted value. It is meaningless when Absent is set.
	Value any

	// Convert, when set, produces Value. It runs only after the invocation
	// passed the naming and presence checks.
	Convert func() (any, error)

	// Absent marks the language's "no value" marker (None). An absent
	// argument counts as not provided.
	Absent bool
}

// Kwarg returns an argument carrying value.
func Kwarg(name string, value any) Argument {
	return Argument{Name: name, Value: value}
}

// None returns an argument set to the "no value" marker.
func None(name string) Argument {
	return Argument{Name: name, Absent: true}
}

// Deferred returns an argument whose value is produced by convert once the
// invocation is known to be well formed.
func Deferred(name string, convert func() (any, error)) Argument {
	return Argument{Name: name, Convert: convert}
}

func (a Argument) value() (any, error) {
	if a.Convert == nil {
		return a.Value, nil
	}
	return a.Convert()
}
