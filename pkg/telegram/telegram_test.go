package telegram

import (
	"strings"
	"testing"
)

func TestStripMarkdown(t *testing.T) {
	got := StripMarkdown("*Fed* holds _rates_ `steady` [link]")
	want := "Fed holds rates steady (link)"
	if got != want {
		t.Fatalf("StripMarkdown = %q, want %q", got, want)
	}
}

func TestTruncation(t *testing.T) {
	long := strings.Repeat("a", MAX_MESSAGE_LEN+500)
	text := StripMarkdown(long)
	if len(text) > MAX_MESSAGE_LEN+500 {
		t.Fatal("strip should not grow the message")
	}
	// Truncation itself happens in Send; verify the arithmetic here.
	truncated := text[:MAX_MESSAGE_LEN-25] + "\n...(message truncated)"
	if len(truncated) > MAX_MESSAGE_LEN {
		t.Fatalf("truncated message is %d chars", len(truncated))
	}
}
