package runtime

import (
	"context"
	"fmt"
	"testing"

	"github.com/quantbrief/go-insight-agent/pkg/memory"
	"github.com/quantbrief/go-insight-agent/pkg/models"
)

func scriptedLoader(responses ...models.ChatResponse) ModelLoader {
	return func(context.Context) (models.ChatModel, error) {
		return models.NewScriptedLLM(responses...), nil
	}
}

func TestNewRequiresModelLoader(t *testing.T) {
	if _, err := New(context.Background()); err == nil {
		t.Fatal("expected error without a model loader")
	}
}

func TestNewSurfacesModelLoadFailure(t *testing.T) {
	loader := func(context.Context) (models.ChatModel, error) {
		return nil, fmt.Errorf("no credential")
	}
	if _, err := New(context.Background(), WithModel(loader)); err == nil {
		t.Fatal("expected model load failure to abort runtime start")
	}
}

func TestSessionLifecycle(t *testing.T) {
	rt, err := New(context.Background(), WithModel(scriptedLoader()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	session := rt.NewSession("")
	if session.ID() == "" {
		t.Fatal("expected generated session id")
	}
	if session.History().Len() != 0 {
		t.Fatal("new session must start with empty history")
	}

	fetched, err := rt.GetSession(session.ID())
	if err != nil || fetched != session {
		t.Fatalf("GetSession mismatch: %v", err)
	}

	rt.RemoveSession(session.ID())
	if _, err := rt.GetSession(session.ID()); err == nil {
		t.Fatal("expected error after session removal")
	}
}

func TestSessionsDoNotShareHistory(t *testing.T) {
	rt, err := New(context.Background(), WithModel(scriptedLoader(
		models.ChatResponse{Content: "answer one"},
	)))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	first := rt.NewSession("first")
	second := rt.NewSession("second")

	if _, err := first.Respond(context.Background(), "hello"); err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if first.History().Len() != 2 {
		t.Fatalf("expected 2 entries in first session, got %d", first.History().Len())
	}
	if second.History().Len() != 0 {
		t.Fatalf("second session history leaked: %d entries", second.History().Len())
	}
}

func TestRespondAppendsHumanThenAI(t *testing.T) {
	rt, err := New(context.Background(), WithModel(scriptedLoader(
		models.ChatResponse{Content: "first answer"},
		models.ChatResponse{Content: "second answer"},
	)))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	session := rt.NewSession("chat")
	for i, q := range []string{"one", "two"} {
		result, err := session.Respond(context.Background(), q)
		if err != nil {
			t.Fatalf("turn %d returned error: %v", i, err)
		}
		if result.Output == "" {
			t.Fatalf("turn %d produced empty output", i)
		}
	}

	msgs := session.History().Messages()
	if len(msgs) != 4 {
		t.Fatalf("expected 4 entries after 2 turns, got %d", len(msgs))
	}
	if msgs[0].Role != memory.RoleHuman || msgs[1].Role != memory.RoleAI {
		t.Fatalf("unexpected roles: %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[2].Content != "two" || msgs[3].Content != "second answer" {
		t.Fatalf("unexpected second turn entries: %+v", msgs[2:])
	}
}

func TestRespondFailedTurnLeavesHistoryUntouched(t *testing.T) {
	rt, err := New(context.Background(), WithModel(scriptedLoader()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	session := rt.NewSession("chat")
	if _, err := session.Respond(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty input")
	}
	if session.History().Len() != 0 {
		t.Fatal("failed turn must not be recorded in history")
	}
}
