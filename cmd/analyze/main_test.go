package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-matcher/internal/analyses"
	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/llm"
	"resume-matcher/internal/shared/config"
)

const reply = `{"matchScore":64,"summary":"Good overlap.","matchingSkills":["Go"],"missingSkills":["Kafka"],"suggestions":["Add streaming work."],"keywordAnalysis":{"found":["Go"],"missing":["Kafka"]}}`

type stubClient struct {
	reply string
	calls int
}

func (s *stubClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.calls++
	return s.reply, nil
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testConfig() config.Config {
	return config.Config{
		LLMProvider:   config.ProviderOpenAI,
		LLMModel:      "gpt-4o",
		MinTextLength: 50,
	}
}

func TestRunRejectsShortResumeBeforeModelCall(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "ten.txt", "ten chars!")
	jd := writeFile(t, dir, "jd.txt", strings.Repeat("Hiring Go!! ", 5))

	built := false
	factory := func(ctx context.Context, cfg config.Config) (llm.Client, error) {
		built = true
		return &stubClient{reply: reply}, nil
	}

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), testConfig(), []string{"--resume", resume, "--jd", jd}, &stdout, &stderr, factory)

	if code != exitInvalid {
		t.Fatalf("expected exit %d, got %d", exitInvalid, code)
	}
	if built {
		t.Fatalf("client must not be built for invalid input")
	}
	if !strings.Contains(stderr.String(), analyses.MsgTooLittleText) {
		t.Fatalf("expected too-little-text message, got %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected no stdout, got %q", stdout.String())
	}
}

func TestRunPrintsOutcome(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", strings.Repeat("Go engineer ", 5))
	jd := writeFile(t, dir, "jd.md", strings.Repeat("Hiring Go!! ", 5))
	outPath := filepath.Join(dir, "out.json")

	client := &stubClient{reply: "```json\n" + reply + "\n```"}
	factory := func(ctx context.Context, cfg config.Config) (llm.Client, error) {
		if cfg.LLMModel != "gpt-4o-mini" {
			t.Fatalf("expected model flag to reach the factory, got %q", cfg.LLMModel)
		}
		return client, nil
	}

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), testConfig(),
		[]string{"--resume", resume, "--jd", jd, "--model", "gpt-4o-mini", "--out", outPath},
		&stdout, &stderr, factory)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, stderr.String())
	}
	if client.calls != 1 {
		t.Fatalf("expected one model call, got %d", client.calls)
	}

	var out struct {
		Status analyzer.Status `json:"status"`
		Result analyzer.Result `json:"result"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("decode stdout: %v", err)
	}
	if out.Status != analyzer.StatusOK || out.Result.MatchScore != 64 {
		t.Fatalf("unexpected output: %+v", out)
	}
	written, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read out file: %v", err)
	}
	if !bytes.Equal(written, stdout.Bytes()) {
		t.Fatalf("out file differs from stdout")
	}
}

func TestRunRequiresBothPaths(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), testConfig(), []string{"--resume", "cv.pdf"}, &stdout, &stderr, nil)
	if code != exitInvalid {
		t.Fatalf("expected exit %d, got %d", exitInvalid, code)
	}
}

func TestRunRejectsUnknownProvider(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), testConfig(), []string{"--resume", "a", "--jd", "b", "--provider", "nope"}, &stdout, &stderr, nil)
	if code != exitInvalid {
		t.Fatalf("expected exit %d, got %d", exitInvalid, code)
	}
}
