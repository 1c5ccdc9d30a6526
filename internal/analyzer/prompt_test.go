package analyzer

import (
	"strings"
	"testing"
)

func TestBuildPromptEmbedsTextsAndSchema(t *testing.T) {
	p := BuildPrompt("RESUME-BODY {{.Resume}}", "JD-BODY")

	for _, want := range []string{
		"RESUME-BODY {{.Resume}}",
		"JD-BODY",
		`"matchScore": number`,
		`"keywordAnalysis"`,
		"matchingSkills",
		"missingSkills",
		"suggestions",
		"Respond ONLY with a single raw JSON object",
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Index(p, "RESUME-BODY") > strings.Index(p, "JD-BODY") {
		t.Fatalf("expected resume before job description")
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	a := BuildPrompt("r", "j")
	if a != BuildPrompt("r", "j") {
		t.Fatalf("expected identical prompts for identical input")
	}
	if promptHash(a) == promptHash(BuildPrompt("r", "j2")) {
		t.Fatalf("expected hash to change with input")
	}
}
