package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/llm"
)

// Provider implements the LLM interface for OpenAI.
type Provider struct {
	client *openai.Client
	model  string
}

// New creates a new OpenAI provider. baseURL is optional and points the
// client at an OpenAI-compatible endpoint.
func New(apiKey, model, baseURL string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key required")
	}
	if model == "" {
		model = "gpt-4o"
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Provider{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openai"
}

func toMessages(req llm.ChatRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)

	// Add system prompt as first message if provided
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}

	for _, m := range req.Messages {
		msg := openai.ChatCompletionMessage{Content: m.Content}
		switch m.Role {
		case core.RoleAssistant:
			msg.Role = openai.ChatMessageRoleAssistant
		case core.RoleFunction:
			msg.Role = openai.ChatMessageRoleFunction
			msg.Name = m.Name
		default:
			msg.Role = openai.ChatMessageRoleUser
		}
		messages = append(messages, msg)
	}
	return messages
}

func toFunctions(specs []core.FunctionSpec) []openai.FunctionDefinition {
	defs := make([]openai.FunctionDefinition, len(specs))
	for i, s := range specs {
		defs[i] = openai.FunctionDefinition{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  s.JSONSchema(),
		}
	}
	return defs
}

// Chat sends a chat request to the OpenAI API using legacy function calling.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toMessages(req),
		MaxTokens:   llm.MaxTokensOrDefault(req.MaxTokens),
		Temperature: float32(req.Temperature),
	}
	if len(req.Functions) > 0 {
		chatReq.Functions = toFunctions(req.Functions)
		chatReq.FunctionCall = "auto"
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, core.WrapError(core.ErrCompletionService, fmt.Errorf("openai API error: %w", err))
	}
	if len(resp.Choices) == 0 {
		return nil, core.WrapError(core.ErrCompletionService, fmt.Errorf("openai returned no choices"))
	}

	choice := resp.Choices[0]
	out := &llm.ChatResponse{
		Content: choice.Message.Content,
		Usage: llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		FinishReason: string(choice.FinishReason),
	}

	name, args := "", ""
	switch {
	case choice.Message.FunctionCall != nil:
		name, args = choice.Message.FunctionCall.Name, choice.Message.FunctionCall.Arguments
	case len(choice.Message.ToolCalls) > 0:
		name, args = choice.Message.ToolCalls[0].Function.Name, choice.Message.ToolCalls[0].Function.Arguments
	}
	if name != "" {
		d, err := core.ParseDirective(name, []byte(args))
		if err != nil {
			return nil, core.WrapError(core.ErrCompletionService, err)
		}
		out.Directive = d
	}
	return out, nil
}
