package bigquery

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	MsgClientNotInitialized = "BigQuery client not initialized."
	MsgNoAccessibleTables   = "No accessible tables found."
)

type TableListKind int

const (
	TableListFound TableListKind = iota + 1
	TableListEmpty
	TableListError
)

// TableList is the outcome of enumerating accessible tables. For the Empty
// and Error kinds Entries holds exactly one status line.
type TableList struct {
	Kind    TableListKind
	Entries []string
}

func NewTableList(tables []string) *TableList {
	if len(tables) == 0 {
		return &TableList{Kind: TableListEmpty, Entries: []string{MsgNoAccessibleTables}}
	}
	return &TableList{Kind: TableListFound, Entries: tables}
}

func NewTableListError(message string) *TableList {
	return &TableList{Kind: TableListError, Entries: []string{message}}
}

func (x *TableList) IsError() bool { return x.Kind == TableListError }
func (x *TableList) IsEmpty() bool { return x.Kind == TableListEmpty }

func (x *TableList) String() string {
	if x.Kind != TableListFound {
		return strings.Join(x.Entries, "\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Accessible tables (%d):**\n", len(x.Entries))
	for _, t := range x.Entries {
		fmt.Fprintf(&b, "- `%s`\n", t)
	}
	return b.String()
}

// Overview renders the tables grouped by project and dataset. Entries that
// are not fully qualified are listed under their known parts only.
func (x *TableList) Overview() string {
	if x.Kind != TableListFound {
		return x.String()
	}

	grouped := map[string]map[string][]string{}
	for _, entry := range x.Entries {
		parts := strings.SplitN(entry, ".", 3)
		for len(parts) < 3 {
			parts = append([]string{""}, parts...)
		}
		project, dataset, table := parts[0], parts[1], parts[2]
		if grouped[project] == nil {
			grouped[project] = map[string][]string{}
		}
		grouped[project][dataset] = append(grouped[project][dataset], table)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Available schemas (%d tables):**\n", len(x.Entries))
	for _, project := range slices.Sorted(maps.Keys(grouped)) {
		fmt.Fprintf(&b, "\n### Project `%s`\n", project)
		datasets := grouped[project]
		for _, dataset := range slices.Sorted(maps.Keys(datasets)) {
			fmt.Fprintf(&b, "\n#### Dataset `%s`\n", dataset)
			tables := datasets[dataset]
			slices.Sort(tables)
			for _, table := range tables {
				fmt.Fprintf(&b, "- `%s`\n", table)
			}
		}
	}
	b.WriteString("\nTo view the schema of a table, ask `show schema for project.dataset.table`.\n")
	return b.String()
}
