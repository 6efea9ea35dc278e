package bigquery

import (
	"fmt"
	"strings"
)

// DescribeResult is either *TableDescription or *TableError.
type DescribeResult interface {
	String() string
	describeResult()
}

type TableDescription struct {
	FullTableID      string            `json:"full_table_id"`
	Schema           []SchemaField     `json:"schema"`
	Partitioning     *PartitioningInfo `json:"partitioning,omitempty"`
	ClusteringFields []string          `json:"clustering_fields,omitempty"`
}

func (x *TableDescription) describeResult() {}

// String renders the description as markdown: partitioning, clustering,
// schema, and a partition-aware query hint when applicable.
func (x *TableDescription) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Details for `%s`:**\n\n", x.FullTableID)

	b.WriteString(x.Partitioning.String())

	if len(x.ClusteringFields) > 0 {
		fmt.Fprintf(&b, "**Clustering Fields:**\n- `%s`\n\n", strings.Join(x.ClusteringFields, "`, `"))
	} else {
		b.WriteString("**Clustering Fields:** None\n\n")
	}

	b.WriteString("**Schema:**\n")
	if len(x.Schema) == 0 {
		b.WriteString("*No schema information found.*\n")
	}
	for _, field := range x.Schema {
		b.WriteString(field.String())
		b.WriteString("\n")
	}

	switch p := x.Partitioning; {
	case p.IsTime() && p.Field != "":
		b.WriteString("\n**Example Query Predicate (using partition):**\n```sql\n")
		fmt.Fprintf(&b, "SELECT * \nFROM `%s` \nWHERE DATE(%s) = CURRENT_DATE() - INTERVAL 1 DAY\nLIMIT 10;\n", x.FullTableID, p.Field)
		b.WriteString("```")
	case p.IsRange() && p.Field != "":
		fmt.Fprintf(&b, "\n**Note:** Table is range-partitioned on `%s`. Filter on this field for better performance.", p.Field)
	}

	return b.String()
}

// SchemaTable renders the schema as a markdown table followed by a legend of field modes.
func (x *TableDescription) SchemaTable() string {
	if len(x.Schema) == 0 {
		return fmt.Sprintf("## No Schema Found\n\nNo schema was found for the specified table: `%s`\n\nPlease check that the table exists and you have permission to access it.\n", x.FullTableID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Schema for %s\n\nThe table contains %d fields:\n\n", x.FullTableID, len(x.Schema))
	b.WriteString("| Field | Type | Mode | Description |\n")
	b.WriteString("|-------|------|------|-------------|\n")
	for _, field := range x.Schema {
		desc := field.Description
		if desc == "" {
			desc = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", field.Name, field.Type, field.Mode, escapeCell(desc))
	}
	b.WriteString("\n---\n\nField Modes:\n")
	b.WriteString("- REQUIRED: Field must have a value\n")
	b.WriteString("- NULLABLE: Field can be null\n")
	b.WriteString("- REPEATED: Field can have multiple values (array)\n")
	return b.String()
}

type TableError struct {
	Message string `json:"error"`
}

func NewTableError(format string, args ...any) *TableError {
	return &TableError{Message: fmt.Sprintf(format, args...)}
}

func (x *TableError) describeResult() {}

func (x *TableError) String() string {
	return "Error: " + x.Message
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
