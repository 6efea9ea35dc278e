package bigquery

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// QueryResult is either *QueryRows or *QueryError.
type QueryResult interface {
	String() string
	queryResult()
}

type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// QueryRows is a fully materialized result set. Row values follow Columns order.
type QueryRows struct {
	JobID               string   `json:"job_id,omitempty"`
	Columns             []Column `json:"columns"`
	Rows                [][]any  `json:"rows"`
	TotalBytesProcessed int64    `json:"total_bytes_processed"`
}

func (x *QueryRows) queryResult() {}

// Records returns rows keyed by column name.
func (x *QueryRows) Records() []map[string]any {
	records := make([]map[string]any, 0, len(x.Rows))
	for _, row := range x.Rows {
		rec := make(map[string]any, len(x.Columns))
		for i, col := range x.Columns {
			if i < len(row) {
				rec[col.Name] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records
}

func (x *QueryRows) String() string {
	if len(x.Rows) == 0 {
		return "Query executed successfully, but returned no results."
	}

	var b strings.Builder
	b.WriteString("|")
	for _, col := range x.Columns {
		fmt.Fprintf(&b, " %s |", escapeCell(col.Name))
	}
	b.WriteString("\n|")
	for range x.Columns {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")

	for _, row := range x.Rows {
		b.WriteString("|")
		for i := range x.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			fmt.Fprintf(&b, " %s |", escapeCell(formatValue(v)))
		}
		b.WriteString("\n")
	}

	unit := "rows"
	if len(x.Rows) == 1 {
		unit = "row"
	}
	fmt.Fprintf(&b, "\n_%s %s, %s processed_", humanize.Comma(int64(len(x.Rows))), unit, humanize.Bytes(uint64(max(x.TotalBytesProcessed, 0))))
	return b.String()
}

type QueryError struct {
	Message string `json:"error"`
}

func NewQueryError(format string, args ...any) *QueryError {
	return &QueryError{Message: fmt.Sprintf(format, args...)}
}

func (x *QueryError) queryResult() {}

func (x *QueryError) String() string { return x.Message }

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
