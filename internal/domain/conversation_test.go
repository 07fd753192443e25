package domain

import (
	"strings"
	"testing"
)

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"short stays whole", "2+2?", "2+2?"},
		{"trims whitespace", "  hola  ", "hola"},
		{"empty falls back", "   ", DefaultConversationTitle},
		{"exactly 50 untouched", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"51 truncated with ellipsis", strings.Repeat("a", 51), strings.Repeat("a", 50) + "..."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := DeriveTitle(c.in); got != c.want {
				t.Fatalf("expected %q, got %q", c.want, got)
			}
		})
	}
}

func TestDeriveTitle_MultibyteSafe(t *testing.T) {
	in := strings.Repeat("ñ", 60)
	got := DeriveTitle(in)
	if got != strings.Repeat("ñ", 50)+"..." {
		t.Fatalf("expected rune-wise truncation, got %q", got)
	}
}

func TestWelcomeMessage(t *testing.T) {
	msg := WelcomeMessage("c1")
	if msg.ID != WelcomeMessageID || msg.Role != RoleAssistant {
		t.Fatalf("unexpected welcome %+v", msg)
	}
	if msg.ConversationID != "c1" {
		t.Fatalf("expected conversation binding, got %q", msg.ConversationID)
	}
}

func TestMaintenanceNoticeFor(t *testing.T) {
	if got := MaintenanceNoticeFor("reconstruction"); got.ShowProgress {
		t.Fatalf("expected reconstruction without progress bar")
	}
	if got := MaintenanceNoticeFor("unknown"); got.Title != MaintenanceNoticeFor("upgrade").Title {
		t.Fatalf("expected fallback to upgrade scenario, got %+v", got)
	}
}
