package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// TextProvider is one generative backend.
type TextProvider interface {
	Name() string
	Complete(ctx context.Context, req Request) (Completion, error)
}

func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

// GeminiProvider sends the prompt rules as a system instruction and the
// subject as the user turn.
type GeminiProvider struct {
	models *genai.Models
	model  string
	logger *zap.Logger
}

func NewGeminiProvider(client *genai.Client, model string, logger *zap.Logger) *GeminiProvider {
	p := &GeminiProvider{model: model, logger: logger}
	if client != nil {
		p.models = client.Models
	}
	return p
}

func (g *GeminiProvider) Name() string { return "Gemini" }

func (g *GeminiProvider) Complete(ctx context.Context, req Request) (Completion, error) {
	if g.models == nil {
		return Completion{}, fmt.Errorf("gemini client not initialized")
	}
	model := g.model
	if req.Model != "" && strings.HasPrefix(req.Model, "gemini") {
		model = req.Model
	}

	resp, err := g.models.GenerateContent(ctx, model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: req.Prompt.Subject}}}},
		geminiConfig(req),
	)
	if err != nil {
		return Completion{}, err
	}

	text := geminiText(resp)
	g.logger.Debug("Gemini completion",
		zap.String("model", model),
		zap.String("preset", string(req.Preset)),
		zap.Int("length", len(text)),
	)
	return Completion{Text: text, Provider: g.Name(), Model: model}, nil
}

func geminiConfig(req Request) *genai.GenerateContentConfig {
	s := req.Preset.Sampling()
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(s.Temperature),
		TopP:            genai.Ptr(s.TopP),
		MaxOutputTokens: int32(s.MaxTokens),
	}
	if s.TopK > 0 {
		cfg.TopK = genai.Ptr(float32(s.TopK))
	}
	if req.Prompt.Rules != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.Prompt.Rules}}}
	}
	return cfg
}

// geminiText joins the visible parts of the first candidate. Thought parts
// are skipped.
func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// OpenAIProvider is the chat completion fallback.
type OpenAIProvider struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIProvider returns nil when apiKey is empty.
func NewOpenAIProvider(apiKey, model string, logger *zap.Logger) *OpenAIProvider {
	if apiKey == "" {
		return nil
	}
	return &OpenAIProvider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger,
	}
}

func (o *OpenAIProvider) Name() string { return "OpenAI" }

func (o *OpenAIProvider) Complete(ctx context.Context, req Request) (Completion, error) {
	model := o.model
	if req.Model != "" && !strings.HasPrefix(req.Model, "gemini") {
		model = req.Model
	}

	resp, err := o.client.Chat.Completions.New(ctx, openAIParams(model, req))
	if err != nil {
		return Completion{}, err
	}

	var text string
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}
	o.logger.Info("OpenAI completion",
		zap.String("model", model),
		zap.String("preset", string(req.Preset)),
		zap.Int("length", len(text)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)
	return Completion{Text: text, Provider: o.Name(), Model: model}, nil
}

// openAIParams leaves sampling at the defaults for gpt-5 models, which reject
// temperature and top_p.
func openAIParams(model string, req Request) openai.ChatCompletionNewParams {
	s := req.Preset.Sampling()
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.Prompt.Rules != "" {
		messages = append(messages, openai.SystemMessage(req.Prompt.Rules))
	}
	messages = append(messages, openai.UserMessage(req.Prompt.Subject))

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(s.MaxTokens)),
	}
	if !strings.HasPrefix(model, "gpt-5") {
		params.Temperature = openai.Float(float64(s.Temperature))
		params.TopP = openai.Float(float64(s.TopP))
	}
	return params
}
