package bigquery

import (
	"fmt"
	"strings"
)

type PartitionType string

const (
	PartitionTime  PartitionType = "TIME"
	PartitionRange PartitionType = "RANGE"
)

// PartitioningInfo describes how a table is partitioned. A nil *PartitioningInfo
// means the table is not partitioned. Granularity is set only for TIME
// (DAY, HOUR, MONTH or YEAR).
type PartitioningInfo struct {
	Type        PartitionType `json:"type"`
	Field       string        `json:"field,omitempty"`
	Granularity string        `json:"granularity,omitempty"`
}

func NewTimePartitioning(field, granularity string) *PartitioningInfo {
	return &PartitioningInfo{Type: PartitionTime, Field: field, Granularity: granularity}
}

func NewRangePartitioning(field string) *PartitioningInfo {
	return &PartitioningInfo{Type: PartitionRange, Field: field}
}

func (x *PartitioningInfo) IsTime() bool  { return x != nil && x.Type == PartitionTime }
func (x *PartitioningInfo) IsRange() bool { return x != nil && x.Type == PartitionRange }

func (x *PartitioningInfo) String() string {
	if x == nil {
		return "**Partitioning:** None\n\n"
	}

	var b strings.Builder
	b.WriteString("**Partitioning:**\n")
	fmt.Fprintf(&b, "- Type: `%s`\n", x.Type)
	if x.Field != "" {
		fmt.Fprintf(&b, "- Field: `%s`\n", x.Field)
	}
	if x.Type == PartitionTime && x.Granularity != "" {
		fmt.Fprintf(&b, "- Granularity: `%s`\n", x.Granularity)
	}
	b.WriteString("\n")
	return b.String()
}
