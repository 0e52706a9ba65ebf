// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package schema

// ImplicitAttributes are accepted by every rule type whether or not its
// schema declares them. Names are in build-file spelling.
var ImplicitAttributes = []string{"visibility", "within_view"}

// IsImplicit reports whether name is an implicit attribute. Only the
// build-file spelling matches: "withinView" is not "within_view".
func IsImplicit(name string) bool {
	for _, attr := range ImplicitAttributes {
		if name == attr {
			return true
		}
	}
	return false
}
