// Package assistant talks to a language model for the desktop's chat app.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrNoAPIKey is returned when no API key was configured.
var ErrNoAPIKey = errors.New("no API key configured (set ANTHROPIC_API_KEY)")

// ErrEmptyReply is returned when the model answered without any text.
var ErrEmptyReply = errors.New("model returned no text")

type Role string

const (
	User      Role = "user"
	Assistant Role = "assistant"
)

// Turn is one chat message sent to the model.
type Turn struct {
	Role Role
	Text string
}

// Client produces the next assistant reply for a conversation.
type Client interface {
	Reply(ctx context.Context, system string, history []Turn) (string, error)
}

// Anthropic is a Client backed by the Anthropic Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropic returns a client for model. It fails without an API key so the
// chat app can say so up front instead of on the first request.
func NewAnthropic(apiKey, model string, maxTokens int) (*Anthropic, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	return &Anthropic{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(1)),
		model:     model,
		maxTokens: int64(maxTokens),
	}, nil
}

// Params builds the request for history. Empty turns are skipped.
func Params(model string, maxTokens int64, system string, history []Turn) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	for _, t := range history {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		block := anthropic.NewTextBlock(t.Text)
		if t.Role == Assistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}
	return params
}

func (a *Anthropic) Reply(ctx context.Context, system string, history []Turn) (string, error) {
	msg, err := a.client.Messages.New(ctx, Params(a.model, a.maxTokens, system, history))
	if err != nil {
		return "", fmt.Errorf("messages request: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyReply
	}
	return sb.String(), nil
}

// Unavailable is a Client that always fails with err. It stands in when no
// real client could be built.
type Unavailable struct{ Err error }

func (u Unavailable) Reply(context.Context, string, []Turn) (string, error) {
	return "", u.Err
}
