package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"alfredoptarigan/ai-interviewer/internal/models"
)

// openAIService talks to any OpenAI-compatible endpoint.
type openAIService struct {
	client     openaigo.Client
	modelName  string
	embedModel string
	dimensions int
	timeout    time.Duration
}

func NewOpenAIService(apiKey, baseURL, modelName, embedModel string, dimensions int, timeout time.Duration) (ModelProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(apiKey)),
		// Retries are decided by the caller, not the SDK.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &openAIService{
		client:     openaigo.NewClient(opts...),
		modelName:  modelName,
		embedModel: embedModel,
		dimensions: dimensions,
		timeout:    timeout,
	}, nil
}

// Generate implements LanguageModel.
func (o *openAIService) Generate(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := withTimeout(ctx, o.timeout)
	defer cancel()

	params := openaigo.ChatCompletionNewParams{
		Model:       openaigo.ChatModel(o.modelName),
		Messages:    openAIMessages(prompt),
		Temperature: openaigo.Float(float64(prompt.Temperature)),
	}
	if prompt.JSON {
		params.ResponseFormat = openaigo.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openaigo.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return text, nil
}

// Embed implements Embedder.
func (o *openAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	text = truncateRunes(text, maxEmbedInputChars)

	ctx, cancel := withTimeout(ctx, o.timeout)
	defer cancel()

	params := openaigo.EmbeddingNewParams{
		Model: openaigo.EmbeddingModel(o.embedModel),
		Input: openaigo.EmbeddingNewParamsInputUnion{OfString: openaigo.String(text)},
	}
	if o.dimensions > 0 {
		params.Dimensions = openaigo.Int(int64(o.dimensions))
	}

	resp, err := o.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	values := resp.Data[0].Embedding
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out, nil
}

func openAIMessages(prompt Prompt) []openaigo.ChatCompletionMessageParamUnion {
	messages := make([]openaigo.ChatCompletionMessageParamUnion, 0, len(prompt.History)+2)
	if prompt.System != "" {
		messages = append(messages, openaigo.SystemMessage(prompt.System))
	}
	for _, m := range prompt.History {
		if m.Role == models.RoleAI {
			messages = append(messages, openaigo.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openaigo.UserMessage(m.Content))
		}
	}
	input := prompt.Input
	if strings.TrimSpace(input) == "" {
		input = "Continue."
	}
	return append(messages, openaigo.UserMessage(input))
}
