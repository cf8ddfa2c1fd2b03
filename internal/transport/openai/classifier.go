package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mobinnet/towersearch/internal/domain"
	"github.com/mobinnet/towersearch/internal/metrics"
)

// classifierSystemPrompt mirrors the inventory analyst prompt: decide where
// on a site a material most likely lives.
const classifierSystemPrompt = `You are an expert telecom inventory analyst. Determine the most likely
install location of a material from its description.

The possible locations are:
- "tower_top": antennas, RRUs, tower sections, guy wires and hardware, ODUs.
- "rack_inside": IDUs, modems, routers, switches, patch panels, power supplies, rectifiers.
- "rack_bottom": batteries, heavy power equipment, grounding bars.

Answer with exactly one of: tower_top, rack_inside, rack_bottom. No other text.`

// Classifier assigns install locations via a chat completion call.
type Classifier struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// ClassifierConfig holds the location classifier settings.
type ClassifierConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewClassifier creates a chat-completion backed location classifier.
func NewClassifier(cfg *ClassifierConfig) *Classifier {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Classifier{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      cfg.Logger,
	}
}

// ClassifyLocation implements classify.LocationClassifier. Unrecognized
// model output falls back to DefaultLocation; only transport failures
// surface as errors.
func (c *Classifier) ClassifyLocation(ctx context.Context, item domain.Item) (domain.Location, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	user := fmt.Sprintf("Material Description: %s\nMaterial Code: %s", item.Description(), item.Code())
	if item.PartNumber() != "" {
		user += "\nPart Number: " + item.PartNumber()
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues("classify", c.model, "error").Inc()
		return "", parseAPIError(err, domain.ErrClassificationFailed)
	}

	metrics.CompletionRequestsTotal.WithLabelValues("classify", c.model, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues("classify", c.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.CompletionTokensTotal.WithLabelValues("classify", c.model, "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	loc, ok := domain.ParseLocation(content)
	if !ok {
		c.logger.Warn("Classifier returned unrecognized location, using default",
			zap.String("model", c.model),
			zap.String("output", content),
			zap.String("item_id", item.ID()),
		)
		return domain.DefaultLocation, nil
	}
	return loc, nil
}
