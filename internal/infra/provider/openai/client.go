package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/Buontempo-Raul/Resurface/internal/domain/analysis"
	"github.com/Buontempo-Raul/Resurface/internal/infra/provider/prompt"
)

const maxTokens = 1024

// Client runs detection through a vision-capable chat model.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

func (c *Client) Version() string {
	if c.Model == "" {
		return "gpt-4o"
	}
	return c.Model
}

func (c *Client) Analyze(ctx context.Context, img analysis.RawImage) (*analysis.AnalysisResult, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o"
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt.GetUserPrompt(img.Name)},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL(img),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	start := time.Now()
	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
			return nil, fmt.Errorf("%w: %v", analysis.ErrQuotaExceeded, err)
		}
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	res, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	res.ProcessingMS = time.Since(start).Milliseconds()
	res.ModelVersion = model
	return res, nil
}

// verdict mirrors the JSON schema in the system prompt.
type verdict struct {
	IsFake           bool    `json:"is_fake"`
	Confidence       float64 `json:"confidence"`
	GenerationMethod *string `json:"generation_method"`
	Anomalies        []struct {
		Region string  `json:"region"`
		Score  float64 `json:"score"`
	} `json:"anomalies"`
}

func parseVerdict(content string) (*analysis.AnalysisResult, error) {
	var v verdict
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return nil, fmt.Errorf("malformed verdict JSON: %w", err)
	}
	res := &analysis.AnalysisResult{
		IsFake:     v.IsFake,
		Confidence: v.Confidence,
	}
	if v.IsFake && v.GenerationMethod != nil {
		res.GenerationMethod = *v.GenerationMethod
	}
	for _, a := range v.Anomalies {
		res.Anomalies = append(res.Anomalies, analysis.AnomalyRegion{Region: a.Region, Score: a.Score})
	}
	return res, nil
}

func dataURL(img analysis.RawImage) string {
	mime := "image/jpeg"
	if strings.EqualFold(img.Format, "png") {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
