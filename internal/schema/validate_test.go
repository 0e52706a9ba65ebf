package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func present(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestValidate(t *testing.T) {
	t.Parallel()

	s := MustSchema("example_library",
		Param{Name: "name", Required: true, Type: cty.String},
		Param{Name: "deps", Type: cty.List(cty.String)},
		Param{Name: "exportedDeps", Required: true, Type: cty.List(cty.String)},
	)

	t.Run("Success: all required present", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, Validate(s, present("name", "exportedDeps")))
	})

	t.Run("Success: optional omissions are fine", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, Validate(s, present("name", "exportedDeps", "deps")))
	})

	t.Run("Failure: reports every missing attribute in declaration order", func(t *testing.T) {
		t.Parallel()
		err := Validate(s, present("deps"))
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrMissingRequiredAttribute))
		assert.False(t, errors.Is(err, ErrUnrecognizedAttribute))

		var attrErr *AttributeError
		require.True(t, errors.As(err, &attrErr))
		assert.Equal(t, "example_library", attrErr.RuleType)
		assert.Equal(t, []string{"name", "exported_deps"}, attrErr.Attributes)
		assert.Equal(t, "example_library: name, exported_deps is expected but not provided", err.Error())
	})

	t.Run("Success: schema without required params accepts nothing", func(t *testing.T) {
		t.Parallel()
		empty := MustSchema("export_file", Param{Name: "src"})
		require.NoError(t, Validate(empty, present()))
	})
}

func TestNewSchema(t *testing.T) {
	t.Parallel()

	t.Run("Success: derives python names and default types", func(t *testing.T) {
		t.Parallel()
		s, err := NewSchema("java_library", Param{Name: "exportedDeps"}, Param{Name: "name", Required: true})
		require.NoError(t, err)
		require.Equal(t, "java_library", s.RuleType())
		require.Equal(t, 2, s.Len())

		p, ok := s.Lookup("exportedDeps")
		require.True(t, ok)
		assert.Equal(t, "exported_deps", p.PythonName)
		assert.True(t, p.Type.Equals(cty.DynamicPseudoType))

		names := []string{}
		for _, p := range s.Params() {
			names = append(names, p.Name)
		}
		assert.Equal(t, []string{"exportedDeps", "name"}, names)
		require.Len(t, s.Required(), 1)
		assert.Equal(t, "name", s.Required()[0].Name)
	})

	t.Run("Failure: duplicate attribute", func(t *testing.T) {
		t.Parallel()
		_, err := NewSchema("x", Param{Name: "name"}, Param{Name: "name"})
		require.ErrorContains(t, err, "declared more than once")
	})

	t.Run("Failure: empty rule type", func(t *testing.T) {
		t.Parallel()
		_, err := NewSchema("")
		require.Error(t, err)
	})
}

func TestIsImplicit(t *testing.T) {
	t.Parallel()

	assert.True(t, IsImplicit("visibility"))
	assert.True(t, IsImplicit("within_view"))
	assert.False(t, IsImplicit("withinView"), "normalized spelling is not a build-file keyword")
	assert.False(t, IsImplicit("deps"))
}
