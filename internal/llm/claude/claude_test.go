package claude

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/llm"
)

func TestProvider_ImplementsInterface(t *testing.T) {
	var _ llm.Provider = (*Provider)(nil)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New("", "model", "")
	if err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestToMessages_ReplaysFunctionResults(t *testing.T) {
	msgs := toMessages([]core.Message{
		{Role: core.RoleUser, Content: "What's the RSI of Microsoft?"},
		{Role: core.RoleFunction, Name: "calculate_RSI", Content: "67.3"},
		{Role: core.RoleAssistant, Content: "It is 67.3."},
		{Role: core.RoleUser, Content: "Thanks"},
	})

	require.Len(t, msgs, 3)
	assert.Equal(t, "user", string(msgs[0].Role))
	require.Len(t, msgs[0].Content, 2)
	assert.Equal(t, "Result of calculate_RSI: 67.3", msgs[0].Content[1].OfText.Text)
	assert.Equal(t, "assistant", string(msgs[1].Role))
	assert.Equal(t, "user", string(msgs[2].Role))
}

func TestChat_ToolUse(t *testing.T) {
	var seen map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		json.NewDecoder(r.Body).Decode(&seen)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-test",
			"content": [
				{"type": "text", "text": "Let me check."},
				{"type": "tool_use", "id": "toolu_1", "name": "calculate_RSI", "input": {"ticker": "MSFT", "period": 14}}
			],
			"stop_reason": "tool_use",
			"usage": {"input_tokens": 40, "output_tokens": 12}
		}`))
	}))
	defer srv.Close()

	p, err := New("test-key", "claude-test", srv.URL)
	require.NoError(t, err)

	resp, err := p.Chat(context.Background(), llm.ChatRequest{
		SystemPrompt: "You are a stock assistant.",
		Messages:     []core.Message{{Role: core.RoleUser, Content: "RSI of MSFT?"}},
		Functions: []core.FunctionSpec{{
			Name:        "calculate_RSI",
			Description: "RSI",
			Args: []core.ArgSpec{
				{Name: "ticker", Type: core.ArgString, Required: true},
				{Name: "period", Type: core.ArgInteger, Positive: true, Default: 14},
			},
		}},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Directive)
	assert.Equal(t, "calculate_RSI", resp.Directive.Name)
	assert.Equal(t, "MSFT", resp.Directive.Arguments["ticker"])
	assert.Equal(t, json.Number("14"), resp.Directive.Arguments["period"])
	assert.Equal(t, "Let me check.", resp.Content)
	assert.Equal(t, "tool_use", resp.FinishReason)
	assert.Equal(t, 12, resp.Usage.OutputTokens)

	tools := seen["tools"].([]any)
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]any)
	assert.Equal(t, "calculate_RSI", tool["name"])
	schema := tool["input_schema"].(map[string]any)
	assert.Equal(t, []any{"ticker"}, schema["required"])
}

func TestChat_BadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type": "error", "error": {"type": "invalid_request_error", "message": "bad"}}`))
	}))
	defer srv.Close()

	p, _ := New("test-key", "", srv.URL)
	_, err := p.Chat(context.Background(), llm.ChatRequest{
		Messages: []core.Message{{Role: core.RoleUser, Content: "hi"}},
	})
	assert.True(t, errors.Is(err, core.ErrCompletionService))
}
