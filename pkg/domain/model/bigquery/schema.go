package bigquery

import "fmt"

type FieldMode string

const (
	ModeNullable FieldMode = "NULLABLE"
	ModeRequired FieldMode = "REQUIRED"
	ModeRepeated FieldMode = "REPEATED"
)

// NewFieldMode derives the column mode from the required/repeated flags of a schema field.
func NewFieldMode(required, repeated bool) FieldMode {
	switch {
	case repeated:
		return ModeRepeated
	case required:
		return ModeRequired
	default:
		return ModeNullable
	}
}

type SchemaField struct {
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Mode        FieldMode `json:"mode"`
	Description string    `json:"description,omitempty"`
}

func (x SchemaField) String() string {
	line := fmt.Sprintf("- `%s`: `%s` (%s)", x.Name, x.Type, x.Mode)
	if x.Description != "" {
		line += fmt.Sprintf(" (Description: *%s*)", x.Description)
	}
	return line
}
