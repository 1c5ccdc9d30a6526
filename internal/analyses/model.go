package analyses

import (
	"time"

	"resume-matcher/internal/analyzer"
)

// Submission is one resume and job description pair, already extracted to text.
type Submission struct {
	ResumeFilename  string
	ResumeText      string
	JobDescFilename string
	JobDescText     string
}

// Record is the persisted analysis. It is written once and expires with the store TTL.
type Record struct {
	ID              string          `json:"id"`
	Timestamp       time.Time       `json:"timestamp"`
	ResumeFilename  string          `json:"resumeFilename"`
	JobDescFilename string          `json:"jobDescFilename"`
	ResumeText      string          `json:"resumeText"`
	JobDescText     string          `json:"jobDescText"`
	Analysis        analyzer.Result `json:"analysis"`
	Status          analyzer.Status `json:"status"`
}

func recordKey(id string) string {
	return "analysis:" + id
}
