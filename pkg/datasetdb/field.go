package datasetdb

import (
	"sort"

	"github.com/stobias123/fiftyone/pkg/labels"
)

// SampleField is the persisted description of one field of a dataset schema
type SampleField struct {
	Name            string `json:"name"`
	FType           string `json:"ftype"`
	Subfield        string `json:"subfield,omitempty"`
	EmbeddedDocType string `json:"embeddedDocType,omitempty"`
	TargetsName     string `json:"targetsName,omitempty"` // Key into the dataset's label targets
}

func SampleFieldFromField(f labels.Field) *SampleField {
	return &SampleField{
		Name:            f.Name,
		FType:           f.FType,
		Subfield:        f.Subfield,
		EmbeddedDocType: f.EmbeddedDocType,
	}
}

// ListFromFieldSchema converts a field schema into a list of SampleFields, sorted by name.
// The "id" field is implicit, and is never stored.
func ListFromFieldSchema(schema map[string]labels.Field) []*SampleField {
	names := make([]string, 0, len(schema))
	for name := range schema {
		if name == "id" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	list := make([]*SampleField, 0, len(names))
	for _, name := range names {
		f := schema[name]
		f.Name = name
		list = append(list, SampleFieldFromField(f))
	}
	return list
}

// ListFromFields is ListFromFieldSchema for a plain list of fields
func ListFromFields(fields []labels.Field) []*SampleField {
	schema := map[string]labels.Field{}
	for _, f := range fields {
		schema[f.Name] = f
	}
	return ListFromFieldSchema(schema)
}

// MatchesField returns true if f describes the same field as 'field'.
// The subfield and embedded document type are only compared when they are set on f.
func (f *SampleField) MatchesField(field labels.Field) bool {
	if f.Name != field.Name || f.FType != field.FType {
		return false
	}
	if f.Subfield != "" && f.Subfield != field.Subfield {
		return false
	}
	if f.EmbeddedDocType != "" && f.EmbeddedDocType != field.EmbeddedDocType {
		return false
	}
	return true
}

// ToField converts back into the schema representation
func (f *SampleField) ToField() labels.Field {
	return labels.Field{
		Name:            f.Name,
		FType:           f.FType,
		Subfield:        f.Subfield,
		EmbeddedDocType: f.EmbeddedDocType,
	}
}
