// Package catalog loads patch specs from YAML documents, checks them against
// the embedded JSON schema, and resolves spec names or file paths to specs.
// The built-in presets ship embedded in the binary.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/graft/pkg/levenshtein"
	"github.com/Sumatoshi-tech/graft/pkg/patch"
)

// Sentinel errors for catalog operations.
var (
	// ErrSchema indicates a document does not satisfy the patch spec schema.
	ErrSchema = errors.New("spec document does not match schema")
	// ErrDecode indicates a document is not valid YAML.
	ErrDecode = errors.New("decode spec document")
	// ErrDuplicateSpec indicates two specs share a name.
	ErrDuplicateSpec = errors.New("duplicate spec name")
	// ErrUnknownSpec indicates a name that is neither a known spec nor a readable file.
	ErrUnknownSpec = errors.New("unknown spec")
	// ErrAmbiguousFile indicates a spec file holds more than one document where one was expected.
	ErrAmbiguousFile = errors.New("spec file holds more than one spec")
	// ErrEmptyFile indicates a spec file holds no documents.
	ErrEmptyFile = errors.New("spec file holds no spec")
)

//go:embed presets/*.yaml
var presetFS embed.FS

//go:generate go run ../../tools/schemagen -o schema

//go:embed schema/patch-spec.json
var schemaJSON []byte

// Schema returns the JSON schema every spec document must satisfy.
func Schema() []byte {
	return slices.Clone(schemaJSON)
}

// Catalog is a named set of validated specs.
type Catalog struct {
	specs   map[string]patch.Spec
	sources map[string]string
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		specs:   make(map[string]patch.Spec),
		sources: make(map[string]string),
	}
}

// Builtin returns a catalog holding the embedded presets.
func Builtin() (*Catalog, error) {
	c := New()

	entries, readErr := fs.ReadDir(presetFS, "presets")
	if readErr != nil {
		return nil, fmt.Errorf("read presets: %w", readErr)
	}

	for _, entry := range entries {
		name := path.Join("presets", entry.Name())

		data, fileErr := presetFS.ReadFile(name)
		if fileErr != nil {
			return nil, fmt.Errorf("read preset %s: %w", name, fileErr)
		}

		specs, loadErr := Load(strings.NewReader(string(data)), "builtin:"+entry.Name())
		if loadErr != nil {
			return nil, loadErr
		}

		for _, spec := range specs {
			addErr := c.add(spec, "builtin")
			if addErr != nil {
				return nil, addErr
			}
		}
	}

	return c, nil
}

// Add registers spec after validating it.
func (c *Catalog) Add(spec patch.Spec, source string) error {
	validateErr := spec.Validate()
	if validateErr != nil {
		return validateErr
	}

	return c.add(spec, source)
}

func (c *Catalog) add(spec patch.Spec, source string) error {
	if prev, exists := c.sources[spec.Name]; exists {
		return fmt.Errorf("%w: %q from %s already defined by %s", ErrDuplicateSpec, spec.Name, source, prev)
	}

	c.specs[spec.Name] = spec
	c.sources[spec.Name] = source

	return nil
}

// AddFile loads every spec in the YAML file at filename into the catalog.
func (c *Catalog) AddFile(filename string) error {
	specs, loadErr := LoadFile(filename)
	if loadErr != nil {
		return loadErr
	}

	for _, spec := range specs {
		addErr := c.add(spec, filename)
		if addErr != nil {
			return addErr
		}
	}

	return nil
}

// Get returns the spec registered under name.
func (c *Catalog) Get(name string) (patch.Spec, bool) {
	spec, ok := c.specs[name]

	return spec, ok
}

// Source returns where the named spec was loaded from.
func (c *Catalog) Source(name string) string {
	return c.sources[name]
}

// List returns all specs sorted by name.
func (c *Catalog) List() []patch.Spec {
	out := make([]patch.Spec, 0, len(c.specs))
	for _, spec := range c.specs {
		out = append(out, spec)
	}

	slices.SortFunc(out, func(a, b patch.Spec) int { return strings.Compare(a.Name, b.Name) })

	return out
}

// Resolve returns the spec registered as nameOrPath, or else loads the single
// spec held by the file at nameOrPath.
func (c *Catalog) Resolve(nameOrPath string) (patch.Spec, error) {
	if spec, ok := c.specs[nameOrPath]; ok {
		return spec, nil
	}

	info, statErr := os.Stat(nameOrPath)
	if statErr != nil || info.IsDir() {
		return patch.Spec{}, c.unknown(nameOrPath)
	}

	specs, loadErr := LoadFile(nameOrPath)
	if loadErr != nil {
		return patch.Spec{}, loadErr
	}

	switch len(specs) {
	case 0:
		return patch.Spec{}, fmt.Errorf("%w: %s", ErrEmptyFile, nameOrPath)
	case 1:
		return specs[0], nil
	default:
		return patch.Spec{}, fmt.Errorf("%w: %s", ErrAmbiguousFile, nameOrPath)
	}
}

// suggestDistance bounds how far a mistyped name may be from a hint.
const suggestDistance = 3

func (c *Catalog) unknown(name string) error {
	names := c.names()

	if hint, ok := levenshtein.Closest(name, names, suggestDistance); ok {
		return fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownSpec, name, hint)
	}

	return fmt.Errorf("%w: %q (known: %s)", ErrUnknownSpec, name, strings.Join(names, ", "))
}

func (c *Catalog) names() []string {
	names := make([]string, 0, len(c.specs))
	for name := range c.specs {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// LoadFile reads every spec document in the YAML file at filename.
func LoadFile(filename string) ([]patch.Spec, error) {
	f, openErr := os.Open(filename)
	if openErr != nil {
		return nil, fmt.Errorf("open spec file: %w", openErr)
	}
	defer f.Close()

	return Load(f, filename)
}

// Load decodes a stream of YAML documents separated by "---". Each document
// is checked against the schema, decoded into a Spec, and validated.
func Load(r io.Reader, source string) ([]patch.Spec, error) {
	dec := yaml.NewDecoder(r)

	var specs []patch.Spec

	for idx := 0; ; idx++ {
		var node yaml.Node

		decodeErr := dec.Decode(&node)
		if errors.Is(decodeErr, io.EOF) {
			break
		}

		if decodeErr != nil {
			return nil, fmt.Errorf("%w: %s document %d: %w", ErrDecode, source, idx, decodeErr)
		}

		if isEmptyDocument(&node) {
			continue
		}

		spec, specErr := decodeSpec(&node)
		if specErr != nil {
			return nil, fmt.Errorf("%s document %d: %w", source, idx, specErr)
		}

		specs = append(specs, spec)
	}

	return specs, nil
}

// isEmptyDocument reports documents with no content, such as a bare "---".
func isEmptyDocument(node *yaml.Node) bool {
	if node.Kind == 0 {
		return true
	}

	if node.Kind != yaml.DocumentNode {
		return false
	}

	if len(node.Content) == 0 {
		return true
	}

	only := node.Content[0]

	return len(node.Content) == 1 && only.Kind == yaml.ScalarNode && only.ShortTag() == "!!null" && only.Value == ""
}

func decodeSpec(node *yaml.Node) (patch.Spec, error) {
	var raw any

	rawErr := node.Decode(&raw)
	if rawErr != nil {
		return patch.Spec{}, fmt.Errorf("%w: %w", ErrDecode, rawErr)
	}

	schemaErr := ValidateDocument(raw)
	if schemaErr != nil {
		return patch.Spec{}, schemaErr
	}

	var spec patch.Spec

	specErr := node.Decode(&spec)
	if specErr != nil {
		return patch.Spec{}, fmt.Errorf("%w: %w", ErrDecode, specErr)
	}

	validateErr := spec.Validate()
	if validateErr != nil {
		return patch.Spec{}, validateErr
	}

	return spec, nil
}

// ValidateDocument checks a decoded document against the patch spec schema.
// The error lists every violation.
func ValidateDocument(doc any) error {
	result, validateErr := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if validateErr != nil {
		return fmt.Errorf("%w: %w", ErrSchema, validateErr)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		msgs = append(msgs, verr.String())
	}

	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
}
