package patch

import (
	"errors"
	"fmt"
	"strings"
)

// Template slot names every insertion template must reference.
const (
	SlotPre  = "pre"
	SlotPost = "post"
)

// Sentinel errors for spec validation and application.
var (
	// ErrInvalidSpec indicates the spec is missing a required field or is inconsistent.
	ErrInvalidSpec = errors.New("invalid patch spec")
	// ErrPatternEngine indicates a pattern could not be compiled or evaluated.
	ErrPatternEngine = errors.New("pattern engine failure")
	// ErrAnchorNotFound indicates strict mode found no insertion anchor.
	ErrAnchorNotFound = errors.New("no insertion anchor matched")
)

// Spec is the declarative description of one injection use case. It holds
// data only; patterns are compiled lazily by the engine and cached by source.
// A Spec is treated as read-only once handed to the engine.
type Spec struct {
	// Name identifies the spec in reports and logs.
	Name string `json:"name" yaml:"name"`

	// Description is free-form help text.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// ImportAnchor matches an existing import line after which ImportInsertion is placed.
	ImportAnchor string `json:"import_anchor_pattern,omitempty" yaml:"import_anchor_pattern,omitempty"`

	// ImportInsertion is the literal text inserted after the import anchor line.
	ImportInsertion string `json:"import_insertion,omitempty" yaml:"import_insertion,omitempty"`

	// ImportMarker proves the import is already present.
	// Empty means the trimmed ImportInsertion.
	ImportMarker string `json:"import_marker,omitempty" yaml:"import_marker,omitempty"`

	// Anchors are candidate block patterns, most specific first. The first
	// pattern that matches wins; later patterns are not evaluated.
	Anchors []string `json:"insertion_anchor_patterns" yaml:"insertion_anchor_patterns"`

	// Template replaces the matched span. It is expanded with regexp.Expand
	// semantics and must reference ${pre} and ${post}. Every $name, ${name}
	// and $N must name a group of each anchor; write $$ for a literal dollar.
	Template string `json:"insertion_template" yaml:"insertion_template"`

	// Marker proves the hook block is already present.
	Marker string `json:"uniqueness_marker" yaml:"uniqueness_marker"`

	// RequireMatch turns a missing insertion anchor into a per-file failure.
	RequireMatch bool `json:"require_match,omitempty" yaml:"require_match,omitempty"`

	// AllOccurrences wraps every occurrence of the winning pattern instead of the first.
	AllOccurrences bool `json:"all_occurrences,omitempty" yaml:"all_occurrences,omitempty"`
}

// EffectiveImportMarker returns the marker used to guard the import step.
func (s Spec) EffectiveImportMarker() string {
	if s.ImportMarker != "" {
		return s.ImportMarker
	}

	return strings.TrimSpace(s.ImportInsertion)
}

// HasImport reports whether the spec carries an import step at all.
func (s Spec) HasImport() bool {
	return s.ImportAnchor != "" && s.ImportInsertion != ""
}

// Validate checks structural invariants and compiles every pattern once.
func (s Spec) Validate() error {
	if len(s.Anchors) == 0 {
		return fmt.Errorf("%w: %q has no insertion anchor patterns", ErrInvalidSpec, s.Name)
	}

	if s.Marker == "" {
		return fmt.Errorf("%w: %q has an empty uniqueness marker", ErrInvalidSpec, s.Name)
	}

	literal, refs := scanTemplate(s.Template)
	if !strings.Contains(literal, s.Marker) {
		return fmt.Errorf("%w: %q expanded template does not contain its uniqueness marker", ErrInvalidSpec, s.Name)
	}

	for _, slot := range []string{SlotPre, SlotPost} {
		if !referencesSlot(s.Template, slot) {
			return fmt.Errorf("%w: %q template does not reference ${%s}", ErrInvalidSpec, s.Name, slot)
		}
	}

	if (s.ImportAnchor == "") != (s.ImportInsertion == "") {
		return fmt.Errorf("%w: %q import anchor and insertion must be set together", ErrInvalidSpec, s.Name)
	}

	if s.HasImport() {
		_, compileErr := compile(s.ImportAnchor)
		if compileErr != nil {
			return compileErr
		}

		if !strings.Contains(s.ImportInsertion, s.EffectiveImportMarker()) {
			return fmt.Errorf("%w: %q import insertion does not contain its import marker", ErrInvalidSpec, s.Name)
		}
	}

	for idx, src := range s.Anchors {
		re, err := compile(src)
		if err != nil {
			return err
		}

		for _, slot := range []string{SlotPre, SlotPost} {
			if re.SubexpIndex(slot) < 0 {
				return fmt.Errorf("%w: %q anchor %d has no (?P<%s>...) group", ErrInvalidSpec, s.Name, idx, slot)
			}
		}

		for _, ref := range refs {
			if !definesRef(re, ref) {
				return fmt.Errorf("%w: %q template references $%s, which anchor %d does not define (use $$ for a literal $)",
					ErrInvalidSpec, s.Name, ref, idx)
			}
		}
	}

	return nil
}

func referencesSlot(template, slot string) bool {
	return strings.Contains(template, "${"+slot+"}")
}
