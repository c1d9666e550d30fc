package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goalspace/goalspace/internal/model"
)

func TestNewFromEnvDisabled(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOALSPACE_LLM_URL", "")

	if gen := NewFromEnv(time.Second); gen != nil {
		t.Errorf("expected nil generator when unconfigured, got %T", gen)
	}
}

func TestClientChat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"content":"hello back"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "test-model", time.Second)
	reply, err := c.Chat(context.Background(), "be brief", []Message{
		{Role: model.RoleUser, Content: "hello"},
	}, Options{})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "hello back" {
		t.Errorf("unexpected reply %q", reply)
	}

	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Errorf("expected system + user messages, got %+v", got.Messages)
	}
	if got.Model != "test-model" {
		t.Errorf("unexpected model %q", got.Model)
	}
}

func TestClientChatErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", time.Second)
	if _, err := c.Chat(context.Background(), "", []Message{{Role: model.RoleUser, Content: "hi"}}, Options{}); err == nil {
		t.Error("expected error on non-200 status")
	}
}
