package classify

import (
	"context"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"cig/internal/cigerr"
	"cig/internal/config"
	"cig/internal/logging"
)

const systemPrompt = `You are a code-change analyst. Given the old and new ` +
	`content of a source file, decide whether the change breaks consumers of ` +
	`that file (changed signatures, return shapes, endpoint paths or behavior) ` +
	`and list the identifiers whose contracts changed (function names, API ` +
	`path strings). Respond with JSON only, no prose, in exactly this shape: ` +
	`{"isBreaking": boolean, "explanation": string, "changedIdentifiers": [string]}`

// OpenAIClassifier implements Classifier against an OpenAI-compatible chat
// completion endpoint.
type OpenAIClassifier struct {
	client   *openai.Client
	model    string
	maxChars int
	timeout  time.Duration
	logger   *logging.Logger
}

// NewOpenAIClassifier builds a classifier from config. The API key comes from
// the configured environment variable; a missing key is an error so the
// caller can decide to run without semantic classification.
func NewOpenAIClassifier(cfg config.ClassifierConfig, logger *logging.Logger) (*OpenAIClassifier, error) {
	keyEnv := cfg.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		return nil, cigerr.New(cigerr.ClassifierUnavailable,
			fmt.Sprintf("environment variable %s is not set", keyEnv), nil)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	maxChars := cfg.MaxContentChars
	if maxChars <= 0 {
		maxChars = 2000
	}
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIClassifier{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		maxChars: maxChars,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// Classify implements Classifier. Call failures and unparsable output both
// yield a degraded outcome; they never propagate as errors.
func (c *OpenAIClassifier) Classify(ctx context.Context, oldContent, newContent string) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := fmt.Sprintf("OLD CONTENT:\n%s\n\nNEW CONTENT:\n%s",
		Truncate(oldContent, c.maxChars), Truncate(newContent, c.maxChars))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		c.logger.Warn("Classifier call failed", map[string]interface{}{
			"model": c.model,
			"error": err.Error(),
		})
		return Outcome{Classification: Degraded(), Degraded: true, Err: err}
	}
	if len(resp.Choices) == 0 {
		err := fmt.Errorf("classifier returned no choices")
		return Outcome{Classification: Degraded(), Degraded: true, Err: err}
	}

	classification, err := ParseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.Warn("Classifier response unparsable", map[string]interface{}{
			"model": c.model,
			"error": err.Error(),
		})
		return Outcome{Classification: Degraded(), Degraded: true, Err: err}
	}

	return Outcome{Classification: classification}
}
