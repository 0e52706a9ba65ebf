// Package registry provides the set of rule types known to the build file
// parser.
//
// Each rule type pairs a name (the function build files call, e.g.
// "java_library") with the schema its invocations are validated against. Rule
// types are declared in HCL manifests, one `rule` block per type, and the
// registry keeps them in the order they were registered so that every build
// file sees the same namespace.
package registry
