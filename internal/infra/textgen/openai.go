package textgen

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"complyd/internal/usecase"
)

// OpenAIGenerator synthesizes narrative text through the OpenAI chat API.
// It makes exactly one attempt per call; retry policy belongs to callers.
type OpenAIGenerator struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIGenerator(apiKey, model string, timeout time.Duration) (*OpenAIGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("openai model is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIGenerator{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		timeout: timeout,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req usecase.TextGenRequest) (usecase.TextGenResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(g.model),
		Messages: messages,
	})
	if err != nil {
		return usecase.TextGenResult{}, err
	}
	if len(completion.Choices) == 0 {
		return usecase.TextGenResult{}, errors.New("empty completion")
	}
	return usecase.TextGenResult{
		Text:  completion.Choices[0].Message.Content,
		Model: completion.Model,
	}, nil
}

var _ usecase.TextGenerator = (*OpenAIGenerator)(nil)
