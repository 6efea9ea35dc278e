package bigquery

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
)

//go:embed prompt/system.md
var systemPromptTemplate string

//go:embed prompt/execute_query.md
var executeQueryPromptTemplate string

var (
	systemPromptTmpl       = template.Must(template.New("system").Parse(systemPromptTemplate))
	executeQueryPromptTmpl = template.Must(template.New("execute_query").Parse(executeQueryPromptTemplate))
)

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt", goerr.V("template", tmpl.Name()))
	}
	return buf.String(), nil
}
