package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lostfound/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// Notifier writes the message sent to a lost item's owner when a found item
// looks like theirs.
type Notifier interface {
	MatchMessage(ctx context.Context, lost, found model.Item) (string, error)
}

// Template is the default Notifier. It never fails.
type Template struct{}

func (Template) MatchMessage(ctx context.Context, lost, found model.Item) (string, error) {
	return ReportedMessage(lost.Title), nil
}

// ReportedMessage is the note sent when a finder links their report to a lost item.
func ReportedMessage(title string) string {
	return fmt.Sprintf("Hi! I think I found your %s. I've reported it as a found item. Please check if this matches what you lost.", title)
}

// OpenAIClient implements Notifier using the OpenAI Chat Completions API and
// falls back to Template when the model errors or answers with nothing.
type OpenAIClient struct {
	client   *openai.Client
	model    string
	fallback Notifier
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

func NewOpenAI(cfg Config) *OpenAIClient {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{client: c, model: model, fallback: Template{}}
}

// New returns the OpenAI notifier when an API key is configured, else Template.
func New(cfg Config) Notifier {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Template{}
	}
	return NewOpenAI(cfg)
}

func (o *OpenAIClient) MatchMessage(ctx context.Context, lost, found model.Item) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sys := `
		You help people get their lost belongings back.
		Write 1-2 short, friendly sentences to the owner of a lost item, telling them a found item may be theirs.
		Mention where it was found. Do not invent details. Plain text, no links.
		`
	user := fmt.Sprintf("Lost: %s (%s), lost at %s on %s.\nFound: %s (%s), found at %s on %s.\nFound description: %s",
		lost.Title, lost.Category, lost.Location, lost.DateLostFound,
		found.Title, found.Category, found.Location, found.DateLostFound,
		truncate(found.Description, 500))
	out, err := o.create(ctx, sys, user)
	out = strings.TrimSpace(out)
	if err != nil || out == "" {
		if err != nil {
			slog.Warn("openai: match message failed, using template", "err", err)
		}
		return o.fallback.MatchMessage(ctx, lost, found)
	}
	return out, nil
}

func (o *OpenAIClient) create(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) > n {
		return string([]rune(s)[:n])
	}
	return s
}
