package theme

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siciyuan404/llm2ui/pkg/registry"
	"github.com/siciyuan404/llm2ui/pkg/schema"
)

func regDef(typeName string) registry.Definition {
	return registry.Definition{Type: typeName}
}

func validManifest() Manifest {
	return Manifest{ID: "aurora", Name: "Aurora", Version: "1.2.0"}
}

func exampleSchema(t *testing.T) *schema.UISchema {
	t.Helper()
	return &schema.UISchema{
		Version: schema.Version,
		Root:    &schema.UIComponent{ID: "r", Type: "Text", Text: "hi"},
	}
}

func TestManifestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		m := validManifest()
		assert.NoError(t, m.Validate())
	})

	t.Run("Missing ID", func(t *testing.T) {
		m := Manifest{Name: "x", Version: "1.0.0"}
		assert.Error(t, m.Validate())
	})

	t.Run("Bad Version", func(t *testing.T) {
		m := Manifest{ID: "x", Name: "x", Version: "not-semver"}
		assert.Error(t, m.Validate())
	})

	t.Run("Engine Constraint Satisfied", func(t *testing.T) {
		m := validManifest()
		m.Engine = ">= 1.0"
		assert.NoError(t, m.Validate())
	})

	t.Run("Engine Constraint Excludes", func(t *testing.T) {
		m := validManifest()
		m.Engine = ">= 2.0"
		err := m.Validate()
		assert.ErrorIs(t, err, ErrIncompatibleEngine)
	})

	t.Run("Bad Constraint Syntax", func(t *testing.T) {
		m := validManifest()
		m.Engine = ">>>nope"
		assert.Error(t, m.Validate())
	})
}

func TestPackExamples(t *testing.T) {
	p, err := New(validManifest())
	require.NoError(t, err)

	require.NoError(t, p.AddExample(Example{ID: "login", Schema: exampleSchema(t)}))
	require.NoError(t, p.AddExample(Example{ID: "profile", Schema: exampleSchema(t)}))
	require.NoError(t, p.AddExample(Example{ID: "bad-form", Negative: true, Schema: exampleSchema(t)}))

	t.Run("Duplicate ID Rejected", func(t *testing.T) {
		err := p.AddExample(Example{ID: "login", Schema: exampleSchema(t)})
		assert.ErrorIs(t, err, ErrDuplicateExample)
	})

	t.Run("Lookup", func(t *testing.T) {
		e, ok := p.ExampleByID("profile")
		require.True(t, ok)
		assert.Equal(t, "profile", e.ID)
		_, ok = p.ExampleByID("ghost")
		assert.False(t, ok)
	})

	t.Run("Positive Negative Split", func(t *testing.T) {
		assert.Len(t, p.PositiveExamples(), 2)
		assert.Len(t, p.NegativeExamples(), 1)
	})

	t.Run("Missing Schema Rejected", func(t *testing.T) {
		assert.Error(t, p.AddExample(Example{ID: "empty"}))
	})
}

func TestPackRegistriesIsolated(t *testing.T) {
	a, err := New(validManifest())
	require.NoError(t, err)
	b, err := New(Manifest{ID: "noir", Name: "Noir", Version: "0.1.0"})
	require.NoError(t, err)

	require.NoError(t, a.Registry.Register(regDef("Button")))
	assert.False(t, b.Registry.Has("Button"))
}

const exampleJSON = `{
	"id": "login",
	"title": "Login form",
	"schema": {
		"version": "1.0",
		"root": {"id": "root", "type": "Card", "children": [
			{"id": "title", "type": "Text", "text": "Sign in"}
		]}
	}
}`

func packFS() fstest.MapFS {
	return fstest.MapFS{
		"aurora/theme.yaml": &fstest.MapFile{Data: []byte(
			"id: aurora\nname: Aurora\nversion: 1.2.0\nplatforms: [web, mobile]\nengine: '>= 1.0'\n",
		)},
		"aurora/components.yaml": &fstest.MapFile{Data: []byte(`components:
  - type: Button
    displayName: Button
    category: input
    props:
      label: {type: string, required: true}
    defaultProps:
      variant: primary
  - type: Text
    category: display
`)},
		"aurora/colors.yaml": &fstest.MapFile{Data: []byte(
			"name: Aurora Dark\ncolors:\n  primary: '#7c3aed'\n  surface: '#1e1b2e'\n",
		)},
		"aurora/tokens.yaml": &fstest.MapFile{Data: []byte(
			"radius-md: 8px\nspace-sm: 4px\n",
		)},
		"aurora/examples/login.json": &fstest.MapFile{Data: []byte(exampleJSON)},
	}
}

func TestLoadPack(t *testing.T) {
	p, err := LoadPack(packFS(), "aurora")
	require.NoError(t, err)

	assert.Equal(t, "aurora", p.Manifest.ID)
	assert.Equal(t, []string{"web", "mobile"}, p.Manifest.Platforms)

	require.True(t, p.Registry.Has("Button"))
	btn, _ := p.Registry.Get("Button")
	assert.Equal(t, "input", btn.Category)
	assert.Equal(t, "primary", btn.DefaultProps["variant"])
	assert.True(t, btn.Props["label"].Required)

	require.NotNil(t, p.Colors)
	assert.Equal(t, "#7c3aed", p.Colors.Colors["primary"])
	assert.Equal(t, "8px", p.Tokens["radius-md"])

	require.Len(t, p.Examples, 1)
	assert.Equal(t, "login", p.Examples[0].ID)
	assert.Equal(t, "Card", p.Examples[0].Schema.Root.Type)
}

func TestLoadPackOptionalFilesAbsent(t *testing.T) {
	fsys := fstest.MapFS{
		"bare/theme.yaml": &fstest.MapFile{Data: []byte("id: bare\nname: Bare\nversion: 0.1.0\n")},
	}
	p, err := LoadPack(fsys, "bare")
	require.NoError(t, err)
	assert.Zero(t, p.Registry.Len())
	assert.Nil(t, p.Colors)
	assert.Empty(t, p.Examples)
}

func TestLoadPackErrors(t *testing.T) {
	t.Run("Missing Manifest", func(t *testing.T) {
		_, err := LoadPack(fstest.MapFS{}, "nope")
		assert.Error(t, err)
	})

	t.Run("Duplicate Example IDs", func(t *testing.T) {
		fsys := packFS()
		fsys["aurora/examples/login2.json"] = &fstest.MapFile{Data: []byte(exampleJSON)}
		_, err := LoadPack(fsys, "aurora")
		assert.ErrorIs(t, err, ErrDuplicateExample)
	})

	t.Run("Invalid Example Schema", func(t *testing.T) {
		fsys := packFS()
		fsys["aurora/examples/bad.json"] = &fstest.MapFile{Data: []byte(
			`{"id": "bad", "schema": {"version": "1.0"}}`,
		)}
		_, err := LoadPack(fsys, "aurora")
		assert.Error(t, err)
	})
}
