package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/llm"
)

// Provider implements the LLM interface for Claude/Anthropic.
type Provider struct {
	client anthropic.Client
	model  string
}

// New creates a new Claude provider. baseURL is optional.
func New(apiKey, model, baseURL string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key required")
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	return &Provider{client: client, model: model}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "claude"
}

// toMessages maps the transcript onto alternating user/assistant turns.
// Function results become user text because the transcript keeps no
// tool_use IDs to pair tool_result blocks with. Consecutive turns of the
// same role are merged into one message.
func toMessages(msgs []core.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	var blocks []anthropic.ContentBlockParamUnion
	var role core.Role

	flush := func() {
		if len(blocks) == 0 {
			return
		}
		if role == core.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
		blocks = nil
	}

	for _, m := range msgs {
		r, text := m.Role, m.Content
		if r == core.RoleFunction {
			r = core.RoleUser
			text = fmt.Sprintf("Result of %s: %s", m.Name, m.Content)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if r != role {
			flush()
			role = r
		}
		blocks = append(blocks, anthropic.NewTextBlock(text))
	}
	flush()
	return out
}

func toTools(specs []core.FunctionSpec) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, len(specs))
	for i, s := range specs {
		tools[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        s.Name,
				Description: anthropic.String(s.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: s.Properties(),
					Required:   s.RequiredArgs(),
				},
			},
		}
	}
	return tools
}

// Chat sends a chat request to the Claude API.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(llm.MaxTokensOrDefault(req.MaxTokens)),
		Messages:  toMessages(req.Messages),
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		}
	}
	if len(req.Functions) > 0 {
		params.Tools = toTools(req.Functions)
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, core.WrapError(core.ErrCompletionService, fmt.Errorf("claude API error: %w", err))
	}

	out := &llm.ChatResponse{
		Usage: llm.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
		FinishReason: string(resp.StopReason),
	}

	var text []string
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text = append(text, block.Text)
		case "tool_use":
			if out.Directive != nil {
				continue
			}
			d, err := core.ParseDirective(block.Name, block.Input)
			if err != nil {
				return nil, core.WrapError(core.ErrCompletionService, err)
			}
			out.Directive = d
		}
	}
	out.Content = strings.Join(text, "\n")
	return out, nil
}
