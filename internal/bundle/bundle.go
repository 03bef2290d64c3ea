// Package bundle moves the admin prompt collections in and out of the
// store as a single versioned JSON or YAML document.
package bundle

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/mirrorsensei/sensei/internal/store"
	"github.com/mirrorsensei/sensei/internal/study"
)

// FormatVersion is written into every exported bundle. Imports accept any
// version with the same major.
const FormatVersion = "v1.0.0"

// ErrIncompatibleVersion is returned when a bundle's major version differs
// from FormatVersion's.
var ErrIncompatibleVersion = errors.New("incompatible bundle version")

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema://prompt-bundle.json"

// Format is a bundle serialization.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown bundle format %q (want json or yaml)", s)
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// Bundle is the portable form of both prompt collections.
type Bundle struct {
	Version         string           `json:"version" yaml:"version"`
	ExportedAt      string           `json:"exportedAt,omitempty" yaml:"exportedAt,omitempty"`
	CategoryPrompts []CategoryPrompt `json:"categoryPrompts" yaml:"categoryPrompts"`
	LevelPrompts    []LevelPrompt    `json:"levelPrompts" yaml:"levelPrompts"`
}

type CategoryPrompt struct {
	Category    study.Category `json:"category" yaml:"category"`
	SubCategory string         `json:"subCategory" yaml:"subCategory"`
	Prompt      string         `json:"prompt" yaml:"prompt"`
}

type LevelPrompt struct {
	Level  study.Level `json:"level" yaml:"level"`
	Prompt string      `json:"prompt" yaml:"prompt"`
}

// Export snapshots the store's prompts. Entries are sorted by catalogue
// order so repeated exports of the same data are identical apart from
// ExportedAt.
func Export(ctx context.Context, repo store.PromptRepo, now time.Time) (*Bundle, error) {
	cats, err := repo.ListCategoryPrompts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list category prompts: %w", err)
	}
	levels, err := repo.ListLevelPrompts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list level prompts: %w", err)
	}

	b := &Bundle{
		Version:         FormatVersion,
		ExportedAt:      now.UTC().Format(time.RFC3339),
		CategoryPrompts: make([]CategoryPrompt, 0, len(cats)),
		LevelPrompts:    make([]LevelPrompt, 0, len(levels)),
	}
	for _, p := range cats {
		b.CategoryPrompts = append(b.CategoryPrompts, CategoryPrompt{
			Category:    p.Category,
			SubCategory: p.SubCategory,
			Prompt:      p.Prompt,
		})
	}
	for _, p := range levels {
		b.LevelPrompts = append(b.LevelPrompts, LevelPrompt{Level: p.Level, Prompt: p.Prompt})
	}

	slices.SortFunc(b.CategoryPrompts, func(x, y CategoryPrompt) int {
		if c := slices.Index(study.Categories, x.Category) - slices.Index(study.Categories, y.Category); c != 0 {
			return c
		}
		return strings.Compare(x.SubCategory, y.SubCategory)
	})
	slices.SortFunc(b.LevelPrompts, func(x, y LevelPrompt) int {
		return slices.Index(study.Levels, x.Level) - slices.Index(study.Levels, y.Level)
	})
	return b, nil
}

// Result counts what Import wrote.
type Result struct {
	CategoryPrompts int
	LevelPrompts    int
}

// Import upserts every entry of b. Existing prompts for the same keys are
// overwritten; prompts not named in b are left alone.
func Import(ctx context.Context, repo store.PromptRepo, b *Bundle) (Result, error) {
	var res Result
	for _, p := range b.CategoryPrompts {
		if err := repo.PutCategoryPrompt(ctx, p.Category, p.SubCategory, p.Prompt); err != nil {
			return res, fmt.Errorf("import %s/%s: %w", p.Category, p.SubCategory, err)
		}
		res.CategoryPrompts++
	}
	for _, p := range b.LevelPrompts {
		if err := repo.PutLevelPrompt(ctx, p.Level, p.Prompt); err != nil {
			return res, fmt.Errorf("import %s: %w", p.Level, err)
		}
		res.LevelPrompts++
	}
	return res, nil
}

// Encode writes b to w in format f.
func Encode(w io.Writer, b *Bundle, f Format) error {
	switch f {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(b); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// Decode parses data in format f, validates it against the bundle schema
// and checks its version.
func Decode(data []byte, f Format) (*Bundle, error) {
	raw := data
	if f == YAML {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert yaml: %w", err)
		}
		raw = converted
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	compiled, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := compiled.Validate(parsed); err != nil {
		return nil, fmt.Errorf("invalid bundle: %w", err)
	}

	var b Bundle
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if err := checkVersion(b.Version); err != nil {
		return nil, err
	}
	return &b, nil
}

func checkVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrIncompatibleVersion, v)
	}
	if semver.Major(v) != semver.Major(FormatVersion) {
		return fmt.Errorf("%w: got %s, want %s.x.y", ErrIncompatibleVersion, v, semver.Major(FormatVersion))
	}
	return nil
}

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal(schemaJSON, &def); err != nil {
			schemaErr = fmt.Errorf("parse bundle schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		schemaCompiled, schemaErr = c.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile bundle schema: %w", schemaErr)
		}
	})
	return schemaCompiled, schemaErr
}
