package service

import (
	"errors"
	"testing"

	"github.com/girmmy/gimmyai/internal/domain"
	"github.com/girmmy/gimmyai/internal/llm"
)

func TestSessionRegistry_OpenGetClose(t *testing.T) {
	reg := NewSessionRegistry()

	sess := reg.Open("user-1")
	if sess.ID == "" {
		t.Fatalf("expected generated session id")
	}

	got, err := reg.Get(sess.ID, "user-1")
	if err != nil || got != sess {
		t.Fatalf("expected to retrieve own session, got %v, %v", got, err)
	}

	if _, err := reg.Get(sess.ID, "intruder"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound for foreign user, got %v", err)
	}

	reg.Close(sess.ID)
	if _, err := reg.Get(sess.ID, "user-1"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound after close, got %v", err)
	}
}

func TestChatSession_AcquireRelease(t *testing.T) {
	sess := &ChatSession{ID: "s1", UserID: "u1"}

	if !sess.tryAcquire() {
		t.Fatalf("first acquire should succeed")
	}
	if sess.tryAcquire() {
		t.Fatalf("second acquire should fail while busy")
	}
	sess.release()
	if !sess.tryAcquire() {
		t.Fatalf("acquire should succeed again after release")
	}
}

func TestChatSession_HistoryIsCopy(t *testing.T) {
	sess := &ChatSession{ID: "s1", UserID: "u1"}
	sess.appendTurn(domain.RoleUser, "hola")

	hist := sess.History()
	hist[0].Content = "mutated"

	if got := sess.History()[0].Content; got != "hola" {
		t.Fatalf("expected internal history untouched, got %q", got)
	}
}

func TestChatSession_SwitchConversation(t *testing.T) {
	sess := &ChatSession{ID: "s1", UserID: "u1"}
	sess.bindConversation("c1")
	sess.appendTurn(domain.RoleUser, "hola")

	if err := sess.switchConversation("c2", []llm.Turn{{Role: domain.RoleUser, Content: "otra"}}); err != nil {
		t.Fatalf("switch: %v", err)
	}

	if sess.ConversationID() != "c2" {
		t.Fatalf("expected active conversation c2, got %q", sess.ConversationID())
	}
	if hist := sess.History(); len(hist) != 1 || hist[0].Content != "otra" {
		t.Fatalf("expected replaced history, got %+v", hist)
	}
}

func TestChatSession_SwitchConversationRejectedWhileBusy(t *testing.T) {
	sess := &ChatSession{ID: "s1", UserID: "u1"}
	sess.bindConversation("c1")
	sess.appendTurn(domain.RoleUser, "hola")

	if !sess.tryAcquire() {
		t.Fatalf("acquire should succeed")
	}
	if err := sess.switchConversation("c2", nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while submission in flight, got %v", err)
	}
	if sess.ConversationID() != "c1" {
		t.Fatalf("expected conversation unchanged, got %q", sess.ConversationID())
	}

	sess.release()
	if err := sess.switchConversation("c2", nil); err != nil {
		t.Fatalf("switch after release: %v", err)
	}
}
