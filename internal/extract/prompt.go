// Package extract implements the extraction core: prompt construction,
// response sanitization, diagram linking, and record validation that turns a
// raw model reply into a validated schema.Extraction aggregate.
package extract

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/Arv-ind-s/qextract/internal/schema"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// Prompt keys for LLM call traceability.
const (
	SystemPromptKey = "extract.questions.system"
	UserPromptKey   = "extract.questions.user"
)

// SystemPrompt returns the system prompt for question extraction.
func SystemPrompt() string {
	return strings.TrimSpace(systemPrompt)
}

// UserPrompt builds the user prompt for question extraction from the parsed
// document text. The admissible enum values are rendered into the
// instructions from the same tables the validator checks against.
func UserPrompt(documentText string) string {
	data := struct {
		Languages        string
		Categories       string
		Difficulties     string
		ImportanceLevels string
		DocumentText     string
	}{
		Languages:        strings.Join(schema.LanguageValues(), ", "),
		Categories:       strings.Join(schema.CategoryValues(), ", "),
		Difficulties:     quoteJoin(schema.DifficultyValues()),
		ImportanceLevels: quoteJoin(schema.ImportanceValues()),
		DocumentText:     documentText,
	}

	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, data); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}

func quoteJoin(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + v + `"`
	}
	return strings.Join(quoted, ", ")
}
