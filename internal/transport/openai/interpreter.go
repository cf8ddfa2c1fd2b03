package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mobinnet/towersearch/internal/domain"
	"github.com/mobinnet/towersearch/internal/metrics"
)

// interpreterSystemPrompt instructs the model to normalize raw inventory
// queries. Queries come from warehouse staff and often mix English part
// descriptions with Persian slang, typos and transliterations.
const interpreterSystemPrompt = `You normalize search queries for a telecom tower material inventory.
The user query may contain typos, slang, transliterated Persian words, or vague phrasing.
Extract the material-related keywords the user is looking for, corrected and in English where an
established technical term exists (e.g. antenna, tower section, turnbuckle, fiber optic, rectifier).
Optionally report facets explicitly present in the query: "type" (material category) and
"condition" ("healthy" or "defective").

Respond with JSON only, in the form:
{"keywords": ["..."], "facets": {"type": "...", "condition": "..."}}

Omit facets you are not sure about. If the query has no interpretable material intent,
return {"keywords": []}.`

// Interpreter normalizes free-text queries via a chat completion call.
type Interpreter struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// InterpreterConfig holds the query interpreter settings.
type InterpreterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewInterpreter creates a chat-completion backed query interpreter.
func NewInterpreter(cfg *InterpreterConfig) *Interpreter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Interpreter{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      cfg.Logger,
	}
}

// interpreterOutput mirrors the JSON shape requested from the model.
type interpreterOutput struct {
	Keywords []string          `json:"keywords"`
	Facets   map[string]string `json:"facets"`
}

// Interpret implements domain.Interpreter: exactly one model call per
// query. Provider failures and unparseable output surface as
// ErrInterpretationFailed; a parseable empty keyword set is returned as-is
// and means "no interpretable intent".
func (i *Interpreter) Interpret(ctx context.Context, query string) (domain.InterpretedQuery, error) {
	content, err := i.complete(ctx, query)
	if err != nil {
		return domain.InterpretedQuery{}, err
	}

	var out interpreterOutput
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues("interpret", i.model, "bad_output").Inc()
		i.logger.Warn("Interpreter returned non-JSON output",
			zap.String("model", i.model),
			zap.String("output", content),
		)
		return domain.InterpretedQuery{}, fmt.Errorf("parse interpreter output: %w", domain.ErrInterpretationFailed)
	}

	keywords := make([]string, 0, len(out.Keywords))
	for _, k := range out.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			keywords = append(keywords, k)
		}
	}

	return domain.InterpretedQuery{Keywords: keywords, Facets: out.Facets}, nil
}

func (i *Interpreter) complete(ctx context.Context, query string) (string, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       i.model,
		Temperature: i.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: interpreterSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
	}

	start := time.Now()

	resp, err := i.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues("interpret", i.model, "error").Inc()
		return "", parseAPIError(err, domain.ErrInterpretationFailed)
	}

	if len(resp.Choices) == 0 {
		metrics.CompletionRequestsTotal.WithLabelValues("interpret", i.model, "empty_response").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrInterpretationFailed)
	}

	metrics.CompletionRequestsTotal.WithLabelValues("interpret", i.model, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues("interpret", i.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.CompletionTokensTotal.WithLabelValues("interpret", i.model, "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.CompletionTokensTotal.WithLabelValues("interpret", i.model, "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	return resp.Choices[0].Message.Content, nil
}
