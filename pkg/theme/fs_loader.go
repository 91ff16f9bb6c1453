package theme

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/gowebpki/jcs"
	"gopkg.in/yaml.v3"

	"github.com/siciyuan404/llm2ui/pkg/registry"
	"github.com/siciyuan404/llm2ui/pkg/schema"
)

// Pack directory layout:
//
//	<dir>/theme.yaml           manifest (required)
//	<dir>/components.yaml      component definitions (optional)
//	<dir>/colors.yaml          color scheme (optional)
//	<dir>/tokens.yaml          design tokens (optional)
//	<dir>/examples/*.json      worked examples (optional)
const (
	manifestFile   = "theme.yaml"
	componentsFile = "components.yaml"
	colorsFile     = "colors.yaml"
	tokensFile     = "tokens.yaml"
	examplesDir    = "examples"
)

type exampleFile struct {
	ID          string          `json:"id"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Negative    bool            `json:"negative,omitempty"`
	Schema      json.RawMessage `json:"schema"`
}

type componentsDoc struct {
	Components []registry.Definition `yaml:"components"`
}

// LoadPack reads a theme pack from a directory. Component definitions
// loaded this way carry docs and prop schemas but no render capability;
// hosts supply those when constructing packs programmatically.
func LoadPack(fsys fs.FS, dir string) (*Pack, error) {
	raw, err := fs.ReadFile(fsys, path.Join(dir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("theme: read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("theme: parse manifest: %w", err)
	}

	p, err := New(m)
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("component", "theme", "pack", m.ID)

	if err := loadComponents(fsys, dir, p); err != nil {
		return nil, err
	}
	if err := loadColors(fsys, dir, p); err != nil {
		return nil, err
	}
	if err := loadTokens(fsys, dir, p); err != nil {
		return nil, err
	}
	if err := loadExamples(fsys, dir, p, logger); err != nil {
		return nil, err
	}
	return p, nil
}

func loadComponents(fsys fs.FS, dir string, p *Pack) error {
	raw, err := fs.ReadFile(fsys, path.Join(dir, componentsFile))
	if err != nil {
		if isNotExist(err) {
			return nil
		}
		return fmt.Errorf("theme: read components: %w", err)
	}
	var doc componentsDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("theme: parse components: %w", err)
	}
	for _, def := range doc.Components {
		if err := p.Registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func loadColors(fsys fs.FS, dir string, p *Pack) error {
	raw, err := fs.ReadFile(fsys, path.Join(dir, colorsFile))
	if err != nil {
		if isNotExist(err) {
			return nil
		}
		return fmt.Errorf("theme: read colors: %w", err)
	}
	var cs ColorScheme
	if err := yaml.Unmarshal(raw, &cs); err != nil {
		return fmt.Errorf("theme: parse colors: %w", err)
	}
	p.Colors = &cs
	return nil
}

func loadTokens(fsys fs.FS, dir string, p *Pack) error {
	raw, err := fs.ReadFile(fsys, path.Join(dir, tokensFile))
	if err != nil {
		if isNotExist(err) {
			return nil
		}
		return fmt.Errorf("theme: read tokens: %w", err)
	}
	tokens := make(map[string]string)
	if err := yaml.Unmarshal(raw, &tokens); err != nil {
		return fmt.Errorf("theme: parse tokens: %w", err)
	}
	p.Tokens = tokens
	return nil
}

func loadExamples(fsys fs.FS, dir string, p *Pack, logger *slog.Logger) error {
	entries, err := fs.ReadDir(fsys, path.Join(dir, examplesDir))
	if err != nil {
		if isNotExist(err) {
			return nil
		}
		return fmt.Errorf("theme: read examples: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	// Canonical content hashes catch distinct-id copies of the same
	// example, which past theme packs have shipped by accident.
	seenContent := make(map[string]string)

	for _, name := range names {
		raw, err := fs.ReadFile(fsys, path.Join(dir, examplesDir, name))
		if err != nil {
			return fmt.Errorf("theme: read example %s: %w", name, err)
		}
		var ef exampleFile
		if err := json.Unmarshal(raw, &ef); err != nil {
			return fmt.Errorf("theme: parse example %s: %w", name, err)
		}
		if len(ef.Schema) == 0 {
			return fmt.Errorf("theme: example %s has no schema", name)
		}
		s, err := schema.Parse(ef.Schema)
		if err != nil {
			return fmt.Errorf("theme: example %s: %w", name, err)
		}

		if canonical, err := jcs.Transform(ef.Schema); err == nil {
			sum := sha256.Sum256(canonical)
			hash := hex.EncodeToString(sum[:])
			if prior, dup := seenContent[hash]; dup {
				logger.Warn("example content duplicates another example", "example", ef.ID, "duplicates", prior)
			} else {
				seenContent[hash] = ef.ID
			}
		}

		if err := p.AddExample(Example{
			ID:          ef.ID,
			Title:       ef.Title,
			Description: ef.Description,
			Tags:        ef.Tags,
			Negative:    ef.Negative,
			Schema:      s,
		}); err != nil {
			return err
		}
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
