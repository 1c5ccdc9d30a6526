package analyzer

import (
	"embed"
	"strings"
	"text/template"

	"resume-matcher/internal/shared/util"
)

//go:embed prompts/*.txt
var promptFS embed.FS

// PromptVersion identifies the embedded template in logs.
const PromptVersion = "match_v1"

var matchTemplate = template.Must(template.ParseFS(promptFS, "prompts/"+PromptVersion+".txt"))

type promptData struct {
	Resume         string
	JobDescription string
}

// BuildPrompt renders the match instructions around both texts.
// The texts are inserted verbatim; callers truncate first.
func BuildPrompt(resume, jobDescription string) string {
	var b strings.Builder
	// The template is parsed at init and only references string fields.
	if err := matchTemplate.Execute(&b, promptData{Resume: resume, JobDescription: jobDescription}); err != nil {
		panic("analyzer: render prompt: " + err.Error())
	}
	return b.String()
}

func promptHash(prompt string) string {
	return util.HashHex(prompt)
}
