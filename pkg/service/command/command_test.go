package command_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bqchat/pkg/service/command"
)

func TestParse(t *testing.T) {
	testCases := map[string]struct {
		input string
		kind  command.Kind
		arg   string
	}{
		"describe":                {"describe sales", command.KindDescribe, "sales"},
		"describe table":          {"describe table mart.sales", command.KindDescribe, "mart.sales"},
		"describe keeps raw id":   {"Describe  p.d.t.x", command.KindDescribe, "p.d.t.x"},
		"execute keeps sql case":  {"execute bq SELECT Name FROM `p.d.t`", command.KindExecute, "SELECT Name FROM `p.d.t`"},
		"execute multiline":       {"execute bq SELECT 1\nUNION ALL SELECT 2", command.KindExecute, "SELECT 1\nUNION ALL SELECT 2"},
		"list tables":             {"list tables", command.KindListTables, ""},
		"show all tables":         {"Can you show all tables?", command.KindListTables, ""},
		"what tables":             {"What tables do you know", command.KindListTables, ""},
		"what schemas":            {"What schemas are available?", command.KindListSchemas, ""},
		"show all schemas":        {"show all schemas", command.KindListSchemas, ""},
		"list schemas":            {"list schemas", command.KindListSchemas, ""},
		"schema for":              {"schema for mart.sales", command.KindDescribe, "mart.sales"},
		"what is the schema":      {"What is the schema of sales.", command.KindDescribe, "sales"},
		"show me schema":          {"show me schema for p.d.t", command.KindDescribe, "p.d.t"},
		"help":                    {"help", command.KindHelp, ""},
		"plain text":              {"hello there", command.KindEcho, "hello there"},
		"execute without keyword": {"execute SELECT 1", command.KindEcho, "execute SELECT 1"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			cmd := command.Parse(tc.input)
			gt.V(t, cmd.Kind).Equal(tc.kind)
			gt.V(t, cmd.Argument).Equal(tc.arg)
		})
	}
}
