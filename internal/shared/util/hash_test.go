package util

import "testing"

func TestHashHex(t *testing.T) {
	prompt := "Resume:\nGo engineer"
	got := HashHex(prompt)
	if got != HashHex(prompt) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
	if got == HashHex(prompt+" ") {
		t.Fatalf("expected different input to change the hash")
	}
}
