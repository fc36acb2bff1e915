package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
)

type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type OpenAIStreamer struct {
	client  openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewOpenAIStreamer(opts OpenAIOptions, logger *zap.Logger) *OpenAIStreamer {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	// Retries would replay chunks the caller has already seen.
	clientOpts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(opts.APIKey)),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(baseURL))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	return &OpenAIStreamer{
		client:  openai.NewClient(clientOpts...),
		model:   strings.TrimSpace(opts.Model),
		timeout: timeout,
		logger:  logger,
	}
}

func (s *OpenAIStreamer) Stream(ctx context.Context, req Request, onChunk func(string)) (string, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.model
	}
	if model == "" {
		return "", errors.New("llm model is not configured")
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: buildMessages(req),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.PresencePenalty != 0 {
		params.PresencePenalty = openai.Float(req.PresencePenalty)
	}
	if req.FrequencyPenalty != 0 {
		params.FrequencyPenalty = openai.Float(req.FrequencyPenalty)
	}

	streamCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stream := s.client.Chat.Completions.NewStreaming(streamCtx, params)
	defer stream.Close()

	var text strings.Builder
	chunks := 0
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		text.WriteString(content)
		chunks++
		if onChunk != nil {
			onChunk(content)
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := stream.Err(); err != nil {
		if errors.Is(streamCtx.Err(), context.DeadlineExceeded) {
			err = &Error{Kind: KindTimeout, Err: err}
		}
		classified := Classify(err)
		s.logger.Warn("llm stream failed",
			zap.String("model", model),
			zap.String("kind", string(KindOf(classified))),
			zap.Int("chunks", chunks),
			zap.Error(err),
		)
		return "", classified
	}
	return text.String(), nil
}

func buildMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Turns)+1)
	if prompt := strings.TrimSpace(req.SystemPrompt); prompt != "" {
		messages = append(messages, openai.SystemMessage(prompt))
	}
	for _, turn := range req.Turns {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		switch turn.Role {
		case RoleUser:
			messages = append(messages, openai.UserMessage(content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(content))
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(content))
		}
	}
	return messages
}
