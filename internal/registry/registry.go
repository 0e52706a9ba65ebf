package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/buildparse/internal/schema"
)

// RuleType is a named category of buildable unit with a fixed schema.
type RuleType struct {
	Name        string
	Description string
	Schema      *schema.Schema

	// Source is the manifest file the rule type was declared in, if any.
	Source string
}

// Registry is an ordered set of rule types. It is populated once at startup
// and read-only afterwards, so concurrent readers need no locking.
type Registry struct {
	types  []*RuleType
	byName map[string]*RuleType
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{byName: make(map[string]*RuleType)}
}

// Register adds a rule type. Registering the same name twice is a programmer
// error and panics.
func (r *Registry) Register(rt *RuleType) {
	if rt == nil || rt.Schema == nil {
		panic("registry: rule type and its schema must not be nil")
	}
	if rt.Name == "" {
		rt.Name = rt.Schema.RuleType()
	}
	if rt.Name != rt.Schema.RuleType() {
		panic(fmt.Sprintf("registry: rule type '%s' registered with schema for '%s'", rt.Name, rt.Schema.RuleType()))
	}
	if _, exists := r.byName[rt.Name]; exists {
		panic(fmt.Sprintf("rule type with name '%s' already registered", rt.Name))
	}
	slog.Debug("Registering rule type.", "name", rt.Name, "attributes", rt.Schema.Len())
	r.types = append(r.types, rt)
	r.byName[rt.Name] = rt
}

// RegisterSchema is a shorthand for registering a bare schema.
func (r *Registry) RegisterSchema(s *schema.Schema) {
	r.Register(&RuleType{Name: s.RuleType(), Schema: s})
}

// Lookup returns the rule type registered under name.
func (r *Registry) Lookup(name string) (*RuleType, bool) {
	rt, ok := r.byName[name]
	return rt, ok
}

// Has reports whether a rule type with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// RuleTypes returns the registered rule types in registration order.
func (r *Registry) RuleTypes() []*RuleType {
	out := make([]*RuleType, len(r.types))
	copy(out, r.types)
	return out
}

// Len returns the number of registered rule types.
func (r *Registry) Len() int {
	return len(r.types)
}
