package main

// Run one analysis from the command line:
//   go run ./cmd/analyze --resume cv.pdf --jd job.txt [--out result.json]

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"resume-matcher/internal/analyses"
	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/bootstrap"
	"resume-matcher/internal/extract"
	"resume-matcher/internal/llm"
	"resume-matcher/internal/shared/config"
)

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitInvalid     = 2
	exitNotAnalyzed = 3
)

type output struct {
	Status analyzer.Status `json:"status"`
	Error  string          `json:"error,omitempty"`
	Result analyzer.Result `json:"result"`
}

type clientFactory func(ctx context.Context, cfg config.Config) (llm.Client, error)

func main() {
	os.Exit(run(context.Background(), config.Load(), os.Args[1:], os.Stdout, os.Stderr, bootstrap.BuildLLMClient))
}

func run(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer, newClient clientFactory) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	resumePath := fs.String("resume", "", "Path to resume file (pdf, docx or text)")
	jdPath := fs.String("jd", "", "Path to job description file (pdf, docx or text)")
	outPath := fs.String("out", "", "Path to write JSON output (optional)")
	provider := fs.String("provider", cfg.LLMProvider, "LLM provider (openai, gemini, vertex)")
	model := fs.String("model", cfg.LLMModel, "LLM model")
	if err := fs.Parse(args); err != nil {
		return exitInvalid
	}

	if strings.TrimSpace(*resumePath) == "" || strings.TrimSpace(*jdPath) == "" {
		fmt.Fprintln(stderr, "--resume and --jd are required")
		return exitInvalid
	}
	cfg.LLMProvider = config.NormalizeProvider(*provider)
	if cfg.LLMProvider == "" {
		fmt.Fprintf(stderr, "unsupported provider: %s\n", *provider)
		return exitInvalid
	}
	cfg.LLMModel = *model

	resumeText, err := readText(ctx, *resumePath)
	if err != nil {
		fmt.Fprintf(stderr, "extract resume text: %v\n", err)
		return exitError
	}
	jdText, err := readText(ctx, *jdPath)
	if err != nil {
		fmt.Fprintf(stderr, "extract job description text: %v\n", err)
		return exitError
	}

	sub := analyses.Submission{ResumeText: resumeText, JobDescText: jdText}
	if err := analyses.Validate(sub, cfg.MinTextLength); err != nil {
		fmt.Fprintln(stderr, analyses.InvalidInputMessage(err))
		return exitInvalid
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	outcome := analyzer.New(client, cfg.AnalyzerOptions()).Analyze(ctx, resumeText, jdText)
	out := output{Status: outcome.Status, Result: outcome.Result}
	if outcome.Err != nil {
		out.Error = outcome.Err.Error()
	}

	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "format json: %v\n", err)
		return exitError
	}
	pretty = append(pretty, '\n')

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			fmt.Fprintf(stderr, "write output: %v\n", err)
			return exitError
		}
	}
	if _, err := stdout.Write(pretty); err != nil {
		fmt.Fprintf(stderr, "write stdout: %v\n", err)
		return exitError
	}
	if !outcome.OK() {
		return exitNotAnalyzed
	}
	return exitOK
}

func readText(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return extract.ExtractTextFromBytes(ctx, data, "", filepath.Base(path))
}
