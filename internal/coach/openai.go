package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	apperrors "tradelens/internal/errors"
	"tradelens/internal/models"
	"tradelens/pkg/utils"
)

const coachSystemPrompt = `You are a trading performance coach. You receive a
trader's aggregate metrics, detected behavioral-bias tiles and optional notes.
Respond with ONLY a JSON object with these fields:
summary (string), sentiment {label, score, evidence},
risk_profile {score, tier, rationale}, optimization_suggestions (string array),
future_bias_triggers (string array), coaching_prompts (string array).
Tier must be one of low, moderate, high. Label must be one of positive,
neutral, negative. Keep the summary to two sentences.`

// ModelProducer generates coaching reports through the OpenAI chat API.
type ModelProducer struct {
	client *openai.Client
	model  string
	retry  utils.RetryConfig
}

// NewModelProducer creates an OpenAI-backed coaching producer.
func NewModelProducer(apiKey, model string) *ModelProducer {
	return &ModelProducer{
		client: openai.NewClient(apiKey),
		model:  model,
		retry:  utils.DefaultRetryConfig(),
	}
}

// Name identifies the producer.
func (p *ModelProducer) Name() string {
	return models.SourceModel
}

// Generate asks the model for a report and validates its shape. Any
// transport, decoding or validation failure is returned as an error so the
// caller can fall back to the heuristic producer.
func (p *ModelProducer) Generate(ctx context.Context, req Request) (*models.CoachingReport, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.NewReportError(p.Name(), err)
	}

	content, err := utils.RetryWithResult(ctx, p.retry, func() (string, error) {
		return p.complete(ctx, string(payload))
	})
	if err != nil {
		return nil, apperrors.NewReportError(p.Name(), err)
	}

	report, err := parseModelReport(content)
	if err != nil {
		return nil, apperrors.NewReportError(p.Name(), err)
	}
	return report, nil
}

func (p *ModelProducer) complete(ctx context.Context, payload string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: coachSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: payload},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}

// parseModelReport decodes the model output, tolerating a fenced code block
// around the JSON, and enforces the report contract.
func parseModelReport(content string) (*models.CoachingReport, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var report models.CoachingReport
	if err := json.Unmarshal([]byte(trimmed), &report); err != nil {
		return nil, fmt.Errorf("decoding model report: %w", err)
	}
	report.Source = models.SourceModel

	if report.OptimizationSuggestions == nil {
		report.OptimizationSuggestions = []string{}
	}
	if report.FutureBiasTriggers == nil {
		report.FutureBiasTriggers = []string{}
	}
	if report.CoachingPrompts == nil {
		report.CoachingPrompts = []string{}
	}
	if !report.Validate() {
		return nil, fmt.Errorf("model report is missing required fields")
	}
	return &report, nil
}
