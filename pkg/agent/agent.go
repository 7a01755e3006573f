// Package agent wraps the LLM tool-calling interface: it turns conversation
// history into either natural-language text or validated tool commands.
package agent

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/Mazzz-zzz/voca.fi/pkg/swap"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToolCall is a single structured invocation returned by the model, with
// its arguments already validated into a typed Command.
type ToolCall struct {
	ID      string
	Name    swap.ToolName
	RawArgs string
	Command Command
}

// Reply is one model response: free text, tool calls, or both.
type Reply struct {
	Text  string
	Calls []ToolCall
}

// Agent talks to the model.
type Agent struct {
	llm llms.Model
	log *logrus.Logger
}

// New creates an agent backed by the OpenAI chat completion API.
func New(apiKey, model string, log *logrus.Logger) (*Agent, error) {
	if apiKey == "" {
		return nil, &swap.ConfigurationError{Reason: "no OpenAI API key configured"}
	}
	if log == nil {
		log = logrus.New()
	}

	llm, err := openai.New(openai.WithToken(apiKey), openai.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}
	return &Agent{llm: llm, log: log}, nil
}

// NewWithModel wraps an existing model, used by tests to inject a fake.
func NewWithModel(llm llms.Model, log *logrus.Logger) *Agent {
	if log == nil {
		log = logrus.New()
	}
	return &Agent{llm: llm, log: log}
}

// Respond sends the conversation to the model with the tool set attached
// and validates any tool calls it returns. A call with arguments that fail
// validation fails the whole reply; nothing half-parsed is acted on.
func (a *Agent) Respond(ctx context.Context, history []Message) (*Reply, error) {
	content := make([]llms.MessageContent, 0, len(history))
	for _, m := range history {
		var t llms.ChatMessageType
		switch m.Role {
		case RoleSystem:
			t = llms.ChatMessageTypeSystem
		case RoleAssistant:
			t = llms.ChatMessageTypeAI
		default:
			t = llms.ChatMessageTypeHuman
		}
		content = append(content, llms.TextParts(t, m.Content))
	}

	resp, err := a.llm.GenerateContent(ctx, content, llms.WithTools(toolDefinitions()))
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm returned no choices")
	}
	choice := resp.Choices[0]

	reply := &Reply{Text: choice.Content}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		cmd, err := ParseCommand(tc.FunctionCall.Name, tc.FunctionCall.Arguments)
		if err != nil {
			return nil, fmt.Errorf("model sent invalid tool call: %w", err)
		}
		reply.Calls = append(reply.Calls, ToolCall{
			ID:      tc.ID,
			Name:    swap.ToolName(tc.FunctionCall.Name),
			RawArgs: tc.FunctionCall.Arguments,
			Command: cmd,
		})
		a.log.WithField("tool", tc.FunctionCall.Name).Debug("model tool call")
	}
	return reply, nil
}
