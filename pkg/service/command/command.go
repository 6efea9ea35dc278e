package command

import (
	"regexp"
	"strings"
)

type Kind int

const (
	KindEcho Kind = iota
	KindListTables
	KindDescribe
	KindExecute
	KindHelp
	KindListSchemas
)

func (x Kind) String() string {
	switch x {
	case KindListTables:
		return "list_tables"
	case KindDescribe:
		return "describe"
	case KindExecute:
		return "execute"
	case KindHelp:
		return "help"
	case KindListSchemas:
		return "list_schemas"
	default:
		return "echo"
	}
}

// Command is a chat message classified into an action. Argument holds the
// table identifier for KindDescribe and the SQL text for KindExecute.
type Command struct {
	Kind     Kind
	Argument string
}

const identifier = `([\w.-]+)`

var (
	describePattern = regexp.MustCompile(`(?is)^describe(?:\s+table)?\s+(.+)$`)
	executePattern  = regexp.MustCompile(`(?is)^execute\s+bq\s+(.+)$`)

	// The captured noun picks between the flat list and the schema overview.
	listPatterns = []*regexp.Regexp{
		regexp.MustCompile(`what (tables|schemas) (?:do you know|are available)`),
		regexp.MustCompile(`(?:show|list|tell me) (?:all|the) (tables|schemas)`),
		regexp.MustCompile(`^(?:list|show) (tables|schemas)$`),
	}

	schemaPatterns = []*regexp.Regexp{
		regexp.MustCompile(`what is the schema (?:for|of) ` + identifier),
		regexp.MustCompile(`show (?:me )?schema (?:for|of) ` + identifier),
		regexp.MustCompile(`schemas? (?:for|of) ` + identifier),
	}
)

// Parse classifies a chat message. Unrecognized text is KindEcho.
func Parse(message string) *Command {
	text := strings.TrimSpace(message)

	if m := executePattern.FindStringSubmatch(text); m != nil {
		return &Command{Kind: KindExecute, Argument: strings.TrimSpace(m[1])}
	}
	if m := describePattern.FindStringSubmatch(text); m != nil {
		return &Command{Kind: KindDescribe, Argument: strings.TrimSpace(m[1])}
	}

	lower := strings.ToLower(text)
	if lower == "help" || lower == "/help" {
		return &Command{Kind: KindHelp}
	}

	for _, p := range listPatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			if m[1] == "schemas" {
				return &Command{Kind: KindListSchemas}
			}
			return &Command{Kind: KindListTables}
		}
	}
	for _, p := range schemaPatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			return &Command{Kind: KindDescribe, Argument: strings.TrimRight(m[1], ".")}
		}
	}

	return &Command{Kind: KindEcho, Argument: text}
}

const HelpMessage = "**Available commands:**\n" +
	"- `describe <table>` shows schema, partitioning and clustering. `<table>` is `table`, `dataset.table` or `project.dataset.table`.\n" +
	"- `execute bq <sql>` runs a BigQuery query.\n" +
	"- `list tables` lists every table you can access.\n" +
	"- `list schemas` shows the same tables grouped by project and dataset.\n" +
	"- `help` shows this message."
