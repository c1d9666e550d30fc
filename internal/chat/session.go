// Package chat manages per-space mentor conversations.
package chat

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goalspace/goalspace/internal/llm"
	"github.com/goalspace/goalspace/internal/model"
	"github.com/goalspace/goalspace/internal/state"
	"github.com/goalspace/goalspace/internal/store"
)

// HandoffSlot passes a one-shot message from another screen into the next
// chat session. Take has read-once semantics: the value is cleared on first
// read, across sessions and spaces.
type HandoffSlot struct {
	mu   sync.Mutex
	path string
}

// NewHandoffSlot creates a slot persisted at path so the hand-off survives
// process boundaries.
func NewHandoffSlot(path string) *HandoffSlot {
	return &HandoffSlot{path: path}
}

// Set stores a value in the slot, replacing any previous one.
func (h *HandoffSlot) Set(content string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return os.WriteFile(h.path, []byte(content), 0o644)
}

// Take returns the slot's value and clears it. The second return is false
// when the slot is empty.
func (h *HandoffSlot) Take() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	data, err := os.ReadFile(h.path)
	if err != nil || len(data) == 0 {
		return "", false
	}
	os.Remove(h.path)
	return string(data), true
}

// Manager runs mentor conversations: one linear history per space, grounded
// in the space's own content, with extracted documents and tasks written
// back to the space.
type Manager struct {
	store store.Store
	state *state.State
	gen   llm.Generator
	slot  *HandoffSlot
	opts  llm.Options
}

// NewManager wires a session manager. gen may be nil, in which case Send
// fails with generation disabled.
func NewManager(st store.Store, snap *state.State, gen llm.Generator, slot *HandoffSlot, opts llm.Options) *Manager {
	return &Manager{store: st, state: snap, gen: gen, slot: slot, opts: opts}
}

// StartSession loads a space's history into the snapshot and injects any
// pending hand-off value as a user message. Returns the history as of
// session start.
func (m *Manager) StartSession(ctx context.Context, spaceID string) ([]model.ChatMessage, error) {
	msgs, err := m.store.ListMessages(ctx, spaceID, 0)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	m.state.SetHistory(spaceID, msgs)

	if m.slot != nil {
		if content, ok := m.slot.Take(); ok {
			handoff := model.ChatMessage{
				ID:        uuid.NewString(),
				SpaceID:   spaceID,
				Role:      model.RoleUser,
				Content:   content,
				CreatedAt: time.Now().UTC(),
			}
			if _, err := m.store.AppendMessage(ctx, handoff); err == nil {
				m.state.AddMessage(spaceID, handoff)
			}
		}
	}

	return m.state.History(spaceID), nil
}

// Send appends the user message optimistically, asks the mentor for a
// reply, and appends the assistant message on success. On generation
// failure the user message stays in the history and no assistant message is
// added; the error is returned for the caller to surface.
func (m *Manager) Send(ctx context.Context, spaceID, content string) (*model.ChatMessage, error) {
	sp, err := m.store.GetSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	userMsg := model.ChatMessage{
		ID:        uuid.NewString(),
		SpaceID:   spaceID,
		Role:      model.RoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := m.store.AppendMessage(ctx, userMsg); err != nil {
		return nil, err
	}
	m.state.AddMessage(spaceID, userMsg)

	if m.gen == nil {
		return nil, fmt.Errorf("generation disabled: no provider configured")
	}

	reply, err := m.gen.Chat(ctx, m.systemPrompt(ctx, sp, content), m.promptHistory(spaceID), m.opts)
	if err != nil {
		return nil, fmt.Errorf("mentor reply: %w", err)
	}

	extracted := llm.ExtractSections(reply)
	m.applyExtraction(ctx, sp, extracted)

	visible := extracted.Message
	if visible == "" {
		visible = strings.TrimSpace(reply)
	}
	assistantMsg := model.ChatMessage{
		ID:        uuid.NewString(),
		SpaceID:   spaceID,
		Role:      model.RoleAssistant,
		Content:   visible,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := m.store.AppendMessage(ctx, assistantMsg); err != nil {
		return nil, err
	}
	m.state.AddMessage(spaceID, assistantMsg)
	return &assistantMsg, nil
}

// systemPrompt is the mentor's system instruction plus the space content
// most relevant to the query.
func (m *Manager) systemPrompt(ctx context.Context, sp *model.Space, query string) string {
	system := sp.Mentor.System
	if system == "" {
		system = fmt.Sprintf("You are a mentor guiding the user through %q.", sp.Title)
	}

	sqlStore, ok := m.store.(*store.SQLiteStore)
	if !ok {
		return system
	}
	cc, err := sqlStore.ChatContext(ctx, store.ChatContextParams{SpaceID: sp.ID, Query: query})
	if err != nil || len(cc.Blocks) == 0 {
		return system
	}

	var b strings.Builder
	b.WriteString(system)
	b.WriteString("\n\nThe user's own material, for grounding:\n")
	for _, block := range cc.Blocks {
		if block.Title != "" {
			fmt.Fprintf(&b, "## %s\n", block.Title)
		}
		b.WriteString(block.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// promptHistory converts the recent snapshot history into generator
// messages, newest-last.
func (m *Manager) promptHistory(spaceID string) []llm.Message {
	history := m.state.History(spaceID)
	const window = 20
	if len(history) > window {
		history = history[len(history)-window:]
	}
	msgs := make([]llm.Message, 0, len(history))
	for _, h := range history {
		msgs = append(msgs, llm.Message{Role: h.Role, Content: h.Content})
	}
	return msgs
}

// applyExtraction writes an extracted document into the space's research
// notes and appends extracted tasks to the to-do list. Failures are
// non-fatal to the chat turn.
func (m *Manager) applyExtraction(ctx context.Context, sp *model.Space, ex llm.Extracted) {
	if ex.Document != nil {
		research := sp.Research
		if research != "" {
			research += "\n\n---\n\n"
		}
		research += ex.Document.Content
		m.store.UpdateSpace(ctx, store.UpdateSpaceParams{ID: sp.ID, Research: &research})
	}

	if len(ex.Tasks) > 0 {
		todos := append([]string{}, sp.ToDoList...)
		for _, task := range ex.Tasks {
			todos = append(todos, task.Title)
		}
		if _, err := m.store.UpdateSpace(ctx, store.UpdateSpaceParams{ID: sp.ID, ToDoList: &todos}); err == nil {
			m.state.UpdateTodoList(sp.ID, todos)
		}
	}
}
