// Package schema holds the compile-time, inert descriptors that carry type
// and naming metadata into the higher-level builders: templates (model +
// collection names and an attribute shape) and relation descriptors. Values
// in this package never touch a document store; they only describe one.
package schema

import (
	"github.com/gertd/go-pluralize"
)

var pluralizeClient = pluralize.NewClient()

// FieldType is the declared shape of an attribute. It is informational only
// — the document store accepts any JSON-like value regardless of the
// template's declared shape, the same way Mirage-style fixtures do.
type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeInt      FieldType = "int"
	FieldTypeFloat    FieldType = "float"
	FieldTypeBool     FieldType = "bool"
	FieldTypeDateTime FieldType = "datetime"
	FieldTypeJSON     FieldType = "json"

	FieldTypeStringArray FieldType = "string[]"
	FieldTypeIntArray    FieldType = "int[]"
)

// Template is a design-time descriptor of a model's singular name,
// collection (plural) name, and attribute shape.
type Template struct {
	Name           string
	CollectionName string
	Attributes     map[string]FieldType
}

// TemplateOption configures a Template at construction time.
type TemplateOption func(*Template)

// WithCollectionName overrides the pluralized collection name derived from
// the singular model name.
func WithCollectionName(name string) TemplateOption {
	return func(t *Template) { t.CollectionName = name }
}

// WithAttribute declares a typed attribute in the template's shape.
func WithAttribute(name string, fieldType FieldType) TemplateOption {
	return func(t *Template) {
		if t.Attributes == nil {
			t.Attributes = make(map[string]FieldType)
		}
		t.Attributes[name] = fieldType
	}
}

// NewTemplate builds a Template for a singular model name (e.g. "post").
// The collection (plural) name is derived via Pluralize unless overridden
// with WithCollectionName.
func NewTemplate(name string, opts ...TemplateOption) *Template {
	t := &Template{
		Name:           name,
		CollectionName: Pluralize(name),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Pluralize returns the plural form of a singular noun, delegating to
// gertd/go-pluralize so irregular nouns (person/people, child/children)
// resolve correctly for default collection and side-load naming.
func Pluralize(word string) string {
	return pluralizeClient.Plural(word)
}

// Singularize returns the singular form of a plural noun.
func Singularize(word string) string {
	return pluralizeClient.Singular(word)
}
