package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/shopmate-assistant/assistant/contract"
)

// LLMExtractor asks a chat model for a structured {intent, entities}
// pair. Any failure of the call or of decoding its output is returned
// as an error so the composite source can fall back to rules.
type LLMExtractor struct {
	client       *openaisdk.Client
	model        string
	temperature  float64
	maxTokens    int64
	systemPrompt string
}

type LLMConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int64
}

func NewLLMExtractor(client *openaisdk.Client, cfg LLMConfig) (*LLMExtractor, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: llm client is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("%w: model name is required", contractx.ErrValidation)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	return &LLMExtractor{
		client:       client,
		model:        strings.TrimSpace(cfg.Model),
		temperature:  cfg.Temperature,
		maxTokens:    maxTokens,
		systemPrompt: ExtractorPrompt(),
	}, nil
}

// wire shape of the model output. The model occasionally quotes
// numbers, so the numeric fields accept both forms.
type llmOutput struct {
	Intent   string      `json:"intent"`
	Entities llmEntities `json:"entities"`
}

type llmEntities struct {
	ProductName   string  `json:"product_name"`
	Quantity      flexInt `json:"quantity"`
	OrderID       flexInt `json:"order_id"`
	Reason        string  `json:"reason"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	PaymentMethod string  `json:"payment_method"`
}

// flexInt decodes a JSON number or a numeric string.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	// tolerate "42.0" style numbers
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %q", s)
	}
	*f = flexInt(v)
	return nil
}

func (e *LLMExtractor) Extract(ctx context.Context, sessionID, text string) (contractx.Extraction, error) {
	if strings.TrimSpace(text) == "" {
		return contractx.Extraction{Intent: contractx.IntentUnknown}, nil
	}

	resp, err := e.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(e.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(e.systemPrompt),
			openaisdk.UserMessage(text),
		},
		Temperature:         openaisdk.Float(e.temperature),
		MaxCompletionTokens: openaisdk.Int(e.maxTokens),
	})
	if err != nil {
		return contractx.Extraction{}, fmt.Errorf("%w: extractor invoke: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return contractx.Extraction{}, fmt.Errorf("%w: empty completion", contractx.ErrModelInvoke)
	}

	out, err := decodeLLMOutput(resp.Choices[0].Message.Content)
	if err != nil {
		log.Debug().Err(err).Str("session_id", sessionID).Msg("extractor output rejected")
		return contractx.Extraction{}, err
	}

	ex := contractx.Extraction{
		Intent: contractx.ParseIntent(out.Intent),
		Entities: contractx.Entities{
			ProductName:   strings.TrimSpace(out.Entities.ProductName),
			Quantity:      int(out.Entities.Quantity),
			OrderID:       int64(out.Entities.OrderID),
			Reason:        strings.TrimSpace(out.Entities.Reason),
			Name:          strings.TrimSpace(out.Entities.Name),
			Address:       strings.TrimSpace(out.Entities.Address),
			PaymentMethod: strings.TrimSpace(out.Entities.PaymentMethod),
		},
	}
	return Normalize(ex), nil
}

// decodeLLMOutput finds the JSON object in the completion text and
// decodes it. Models wrap output in code fences often enough that a
// strict json.Unmarshal on the raw text would reject valid answers.
func decodeLLMOutput(content string) (llmOutput, error) {
	raw := strings.TrimSpace(content)
	if start := strings.IndexByte(raw, '{'); start >= 0 {
		if end := strings.LastIndexByte(raw, '}'); end > start {
			raw = raw[start : end+1]
		}
	}

	var out llmOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return llmOutput{}, fmt.Errorf("%w: decode extractor output: %v", contractx.ErrSchemaViolation, err)
	}
	if strings.TrimSpace(out.Intent) == "" {
		return llmOutput{}, fmt.Errorf("%w: missing intent", contractx.ErrSchemaViolation)
	}
	return out, nil
}

// Normalize applies entity defaults: cart and checkout quantities
// default to 1 when absent or non-positive.
func Normalize(ex contractx.Extraction) contractx.Extraction {
	switch ex.Intent {
	case contractx.IntentAddToCart, contractx.IntentCheckout:
		if ex.Entities.Quantity <= 0 {
			ex.Entities.Quantity = 1
		}
	}
	return ex
}
