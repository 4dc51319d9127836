package schema

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Kind is the value shape a field accepts.
type Kind string

const (
	KindString     Kind = "string"
	KindNumber     Kind = "number"
	KindStringList Kind = "string_list"
	KindRecordList Kind = "record_list"
	KindMap        Kind = "map"
)

// Field describes one named entry of the extraction output.
// Items is only set for KindRecordList and lists the record's sub-fields.
type Field struct {
	Name        string
	Kind        Kind
	Required    bool
	Description string
	Items       []Field
}

// Schema is an ordered, immutable field set. Build it once and share it.
type Schema struct {
	Name   string
	Fields []Field

	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
}

// Field names of the document schema.
const (
	FieldDocumentType   = "documentType"
	FieldSummary        = "summary"
	FieldPeople         = "people"
	FieldOrganizations  = "organizations"
	FieldLocations      = "locations"
	FieldDates          = "dates"
	FieldAmounts        = "amounts"
	FieldPhoneNumbers   = "phoneNumbers"
	FieldEmails         = "emails"
	FieldKeyInformation = "keyInformation"
)

var (
	docOnce   sync.Once
	docSchema *Schema
)

// Document returns the process-wide extraction schema.
func Document() *Schema {
	docOnce.Do(func() {
		docSchema = New("document", []Field{
			{Name: FieldDocumentType, Kind: KindString, Required: true,
				Description: "Kind of document, e.g. invoice, contract, letter, report."},
			{Name: FieldSummary, Kind: KindString, Required: true,
				Description: "A few sentences summarising the document."},
			{Name: FieldPeople, Kind: KindStringList,
				Description: "Names of people mentioned."},
			{Name: FieldOrganizations, Kind: KindStringList,
				Description: "Companies, agencies and other organisations mentioned."},
			{Name: FieldLocations, Kind: KindStringList,
				Description: "Addresses, cities, countries and other places."},
			{Name: FieldDates, Kind: KindRecordList,
				Description: "Dates found in the document with what they refer to.",
				Items: []Field{
					{Name: "date", Kind: KindString, Required: true, Description: "The date as written or ISO-8601."},
					{Name: "description", Kind: KindString, Required: true, Description: "What the date refers to."},
				}},
			{Name: FieldAmounts, Kind: KindRecordList,
				Description: "Monetary or numeric amounts with context.",
				Items: []Field{
					{Name: "value", Kind: KindNumber, Required: true, Description: "Numeric value."},
					{Name: "currency", Kind: KindString, Description: "ISO 4217 code when known."},
					{Name: "description", Kind: KindString, Required: true, Description: "What the amount refers to."},
				}},
			{Name: FieldPhoneNumbers, Kind: KindStringList,
				Description: "Phone numbers."},
			{Name: FieldEmails, Kind: KindStringList,
				Description: "Email addresses."},
			{Name: FieldKeyInformation, Kind: KindMap,
				Description: "Any other key facts or structured data, as name/value pairs."},
		})
	})
	return docSchema
}

// New builds a schema from fields in declaration order.
func New(name string, fields []Field) *Schema {
	return &Schema{Name: name, Fields: fields}
}

// Field looks up a top-level field by name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Required lists required top-level field names in order.
func (s *Schema) Required() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// JSONSchema renders the schema as a JSON-Schema document (generic map).
// It is sent to the model as the output constraint and compiled locally for validation.
func (s *Schema) JSONSchema() map[string]any {
	return objectSchema(s.Fields, true)
}

func objectSchema(fields []Field, additional bool) map[string]any {
	props := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		props[f.Name] = f.jsonSchema()
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": additional,
	}
}

func (f Field) jsonSchema() map[string]any {
	var out map[string]any
	switch f.Kind {
	case KindString:
		out = map[string]any{"type": "string"}
	case KindNumber:
		out = map[string]any{"type": "number"}
	case KindStringList:
		out = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	case KindRecordList:
		out = map[string]any{"type": "array", "items": objectSchema(f.Items, false)}
	case KindMap:
		out = map[string]any{"type": "object", "additionalProperties": true}
	default:
		out = map[string]any{}
	}
	if f.Description != "" {
		out["description"] = f.Description
	}
	return out
}
