package chat

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/goalspace/goalspace/internal/llm"
	"github.com/goalspace/goalspace/internal/model"
	"github.com/goalspace/goalspace/internal/state"
	"github.com/goalspace/goalspace/internal/store"
)

// scriptedGenerator returns canned replies, or an error when failing.
type scriptedGenerator struct {
	reply string
	fail  bool
	calls int
}

func (g *scriptedGenerator) Chat(_ context.Context, system string, messages []llm.Message, _ llm.Options) (string, error) {
	g.calls++
	if g.fail {
		return "", fmt.Errorf("upstream unavailable")
	}
	return g.reply, nil
}

type fixture struct {
	store *store.SQLiteStore
	state *state.State
	slot  *HandoffSlot
	space *model.Space
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	st, err := store.NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	snap, err := state.Open(filepath.Join(dir, "state.json"), st)
	if err != nil {
		t.Fatalf("open state: %v", err)
	}

	sp, err := st.CreateSpace(context.Background(), store.CreateSpaceParams{
		UserID: "u1", Title: "Go Concurrency",
		Mentor:   model.Mentor{Name: "Ada", System: "You are Ada."},
		ToDoList: []string{"existing task"},
	})
	if err != nil {
		t.Fatalf("create space: %v", err)
	}
	snap.SetSpaces([]model.Space{*sp})

	return &fixture{
		store: st,
		state: snap,
		slot:  NewHandoffSlot(filepath.Join(dir, "handoff")),
		space: sp,
	}
}

func TestSendAppendsBothMessages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gen := &scriptedGenerator{reply: "Channels carry values."}
	m := NewManager(f.store, f.state, gen, f.slot, llm.Options{})

	reply, err := m.Send(ctx, f.space.ID, "what are channels?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.Role != model.RoleAssistant || reply.Content != "Channels carry values." {
		t.Errorf("unexpected reply: %+v", reply)
	}

	history := f.state.History(f.space.ID)
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Role != model.RoleUser || history[1].Role != model.RoleAssistant {
		t.Errorf("unexpected roles: %v", history)
	}

	// History is durable too
	stored, _ := f.store.ListMessages(ctx, f.space.ID, 0)
	if len(stored) != 2 {
		t.Errorf("expected 2 stored messages, got %d", len(stored))
	}
}

func TestSendFailureKeepsUserMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gen := &scriptedGenerator{fail: true}
	m := NewManager(f.store, f.state, gen, f.slot, llm.Options{})

	if _, err := m.Send(ctx, f.space.ID, "hello?"); err == nil {
		t.Fatal("expected error from failing generator")
	}

	history := f.state.History(f.space.ID)
	if len(history) != 1 {
		t.Fatalf("expected 1 message, got %d", len(history))
	}
	if history[0].Role != model.RoleUser {
		t.Errorf("expected user message kept, got %+v", history[0])
	}
}

func TestSendWithoutGenerator(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.store, f.state, nil, f.slot, llm.Options{})

	if _, err := m.Send(context.Background(), f.space.ID, "hi"); err == nil {
		t.Fatal("expected generation disabled error")
	}
}

func TestHandoffInjectedOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := NewManager(f.store, f.state, &scriptedGenerator{reply: "ok"}, f.slot, llm.Options{})

	f.slot.Set("Help me with X")

	history, err := m.StartSession(ctx, f.space.ID)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 injected message, got %d", len(history))
	}
	if history[0].Role != model.RoleUser || history[0].Content != "Help me with X" {
		t.Errorf("unexpected first message: %+v", history[0])
	}

	// Second session start must not re-inject: the slot is read-once
	sp2, _ := f.store.CreateSpace(ctx, store.CreateSpaceParams{UserID: "u1", Title: "Other"})
	history2, _ := m.StartSession(ctx, sp2.ID)
	if len(history2) != 0 {
		t.Errorf("expected empty history for second session, got %v", history2)
	}
}

func TestSendExtractsDocumentAndTasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gen := &scriptedGenerator{
		reply: "Here you go\nDOCUMENT:\n# Channels\nNotes\nTASKS:\n[{\"title\":\"Write a pipeline\",\"description\":\"stage it\"}]",
	}
	m := NewManager(f.store, f.state, gen, f.slot, llm.Options{})

	reply, err := m.Send(ctx, f.space.ID, "teach me channels")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.Content != "Here you go" {
		t.Errorf("expected stripped message, got %q", reply.Content)
	}

	sp, _ := f.store.GetSpace(ctx, f.space.ID)
	if sp.Research != "# Channels\nNotes" {
		t.Errorf("document not written to research notes: %q", sp.Research)
	}
	if len(sp.ToDoList) != 2 || sp.ToDoList[1] != "Write a pipeline" {
		t.Errorf("task not appended to todo list: %v", sp.ToDoList)
	}
}

func TestPromptHistoryWindow(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.store, f.state, nil, f.slot, llm.Options{})

	for i := 0; i < 30; i++ {
		f.state.AddMessage(f.space.ID, model.ChatMessage{Role: model.RoleUser, Content: fmt.Sprintf("m%d", i)})
	}
	msgs := m.promptHistory(f.space.ID)
	if len(msgs) != 20 {
		t.Fatalf("expected 20-message window, got %d", len(msgs))
	}
	if msgs[len(msgs)-1].Content != "m29" {
		t.Errorf("expected newest message last, got %q", msgs[len(msgs)-1].Content)
	}
}
