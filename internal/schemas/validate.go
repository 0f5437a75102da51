// Package schemas validates structured model output against embedded JSON Schemas.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ResumeScore is the schema for the resume scoring verdict.
const ResumeScore = "resume_score.schema.json"

//go:embed *.schema.json
var schemaFiles embed.FS

// compiled caches *gojsonschema.Schema by file name.
var compiled sync.Map

// Violation is one failed rule at a document path ("(root)" for the top level).
type Violation struct {
	Path    string
	Message string
}

// ValidationError lists every rule a document broke.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	return "schema validation failed: " + e.Summary()
}

// Summary joins the violations on one line, suitable for logs and stored reasons.
func (e *ValidationError) Summary() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Path + ": " + v.Message
	}
	return strings.Join(parts, "; ")
}

// LoadError reports a schema that is missing or does not compile.
type LoadError struct {
	Name  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load schema %s: %v", e.Name, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// Validate checks doc against the embedded schema called name. A document that is not
// JSON fails with a plain error; rule violations fail with *ValidationError.
func Validate(name, doc string) error {
	schema, err := load(name)
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Violations: make([]Violation, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		path := desc.Field()
		if path == "" {
			path = "(root)"
		}
		verr.Violations = append(verr.Violations, Violation{Path: path, Message: desc.Description()})
	}
	return verr
}

func load(name string) (*gojsonschema.Schema, error) {
	if s, ok := compiled.Load(name); ok {
		return s.(*gojsonschema.Schema), nil
	}
	raw, err := schemaFiles.ReadFile(name)
	if err != nil {
		return nil, &LoadError{Name: name, Cause: err}
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &LoadError{Name: name, Cause: err}
	}
	actual, _ := compiled.LoadOrStore(name, s)
	return actual.(*gojsonschema.Schema), nil
}
