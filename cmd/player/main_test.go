package main

import (
	"strings"
	"testing"

	"github.com/ui-xd/test-stream-sub001/pkg/session"
)

func TestPromptText(t *testing.T) {
	if promptText(session.PromptNone, "Right Ctrl") != "" {
		t.Error("no prompt, no text")
	}
	if s := promptText(session.PromptIntro, "Right Ctrl"); !strings.Contains(s, "Right Ctrl") {
		t.Errorf("intro should name the release key: %q", s)
	}
	if promptText(session.PromptResume, "") == "" {
		t.Error("resume has text")
	}
}
