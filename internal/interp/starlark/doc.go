// Package starlark implements interp.Evaluator on top of go.starlark.net.
//
// Build files are parsed with the Starlark dialect options Buck files rely on
// (top-level if/for, global reassignment, sets). Each session owns one
// starlark.Thread; rule functions are exposed as predeclared builtins that
// accept keyword arguments only and convert their values to plain Go values
// before handing them to the capture layer.
package starlark
