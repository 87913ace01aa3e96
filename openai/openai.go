package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/openai/openai-go/v3" // imported as openai
	"github.com/openai/openai-go/v3/option"

	"github.com/ibreez3/pixel-ai/chat"
)

const keyPrefixLen = 7

// Client is the completion gateway backed by the OpenAI chat completions API.
type Client struct {
	cli    openai.Client
	apiKey string
	verify bool
	log    *slog.Logger
}

var _ chat.Gateway = (*Client)(nil)

func NewClient(apiKey string, baseURL string, opts ...option.RequestOption) *Client {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	}
	openAICli := openai.NewClient(append(base, opts...)...)
	return &Client{
		cli:    openAICli,
		apiKey: apiKey,
		log:    slog.Default(),
	}
}

// WithRetries sets the SDK-level retry count for a single call. It is
// independent of the orchestrator's model fallback.
func WithRetries(n int) option.RequestOption {
	return option.WithMaxRetries(n)
}

func WithRequestTimeout(d time.Duration) option.RequestOption {
	return option.WithRequestTimeout(d)
}

func (c *Client) WithLogger(log *slog.Logger) *Client {
	if log != nil {
		c.log = log
	}
	return c
}

// WithVerify makes CheckKeyStatus call the API instead of only checking that
// a key is present.
func (c *Client) WithVerify(verify bool) *Client {
	c.verify = verify
	return c
}

func (c *Client) CheckKeyStatus(ctx context.Context) (chat.KeyProbe, error) {
	if c.apiKey == "" {
		return chat.KeyProbe{Configured: false}, nil
	}
	if c.verify {
		if _, err := c.cli.Models.List(ctx); err != nil {
			return chat.KeyProbe{Configured: false}, err
		}
	}
	return chat.KeyProbe{Configured: true, KeyPrefix: maskKey(c.apiKey)}, nil
}

func (c *Client) Complete(ctx context.Context, turns []chat.Turn, model string) chat.Outcome {
	msgs, err := toParams(turns)
	if err != nil {
		return chat.Failed(chat.KindInvalid, err.Error(), false)
	}
	start := time.Now()
	res, err := c.cli.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    model,
		Messages: msgs,
	})
	if err != nil {
		out := classify(err)
		c.log.Warn("chat completion failed", "model", model, "kind", out.Kind, "fallback", out.Fallback, "elapsed", time.Since(start))
		return out
	}
	if len(res.Choices) == 0 {
		return chat.Failed(chat.KindMalformed, "The model returned no choices.", false)
	}
	content := res.Choices[0].Message.Content
	c.log.Debug("chat completion", "model", model, "turns", len(turns), "elapsed", time.Since(start))
	return chat.Succeeded(content)
}

func toParams(turns []chat.Turn) ([]openai.ChatCompletionMessageParamUnion, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for i, t := range turns {
		switch t.Role {
		case chat.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(t.Content))
		case chat.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(t.Content))
		case chat.RoleUser:
			msgs = append(msgs, openai.UserMessage(t.Content))
		default:
			return nil, fmt.Errorf("message %d has unsupported role %q", i, t.Role)
		}
	}
	return msgs, nil
}

func maskKey(key string) string {
	if len(key) <= keyPrefixLen {
		return key[:len(key)/2]
	}
	return key[:keyPrefixLen]
}
