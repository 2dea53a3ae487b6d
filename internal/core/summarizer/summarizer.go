// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package summarizer condenses the full narration of a video into a short
// summary stored alongside the transcription.
package summarizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/openai/openai-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

// ErrSummary wraps every summarizer failure.
var ErrSummary = errors.New("summarization failed")

// SystemPrompt instructs the model how to summarise an operation narration.
const SystemPrompt = "あなたは操作マニュアルの編集者です。与えられた動画のナレーションを読み、操作手順の要点を簡潔な日本語で要約してください。"

// DefaultSummaryPrompt is used when prompt_templates.summary is empty.
const DefaultSummaryPrompt = "以下のナレーションを要約してください:\n\n{{ .TEXT }}"

const (
	openAITemperature = 0.3
	openAIMaxTokens   = 2000
)

// Summarizer produces a summary of text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// New returns the summarizer selected by config.Summarizer.Engine, or nil
// when the engine is "none".
func New(config *cloud.Config, clients *cloud.ServiceClients) (Summarizer, error) {
	prompt := config.PromptTemplates.SummaryPrompt
	if prompt == "" {
		prompt = DefaultSummaryPrompt
	}
	tmpl, err := template.New("summary").Parse(prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: parse prompt: %v", ErrSummary, err)
	}

	switch config.Summarizer.Engine {
	case cloud.SummarizerEngineNone, "":
		return nil, nil
	case cloud.SummarizerEngineOpenAI:
		if clients.OpenAIClient == nil {
			return nil, fmt.Errorf("%w: openai summarizer needs %s", ErrSummary, cloud.EnvOpenAIAPIKey)
		}
		return &OpenAISummarizer{client: clients.OpenAIClient, model: config.OpenAI.ChatModel, template: tmpl}, nil
	case cloud.SummarizerEngineGemini:
		agent, ok := clients.AgentModels[config.Summarizer.AgentModel]
		if !ok {
			return nil, fmt.Errorf("%w: agent model %q is not available", ErrSummary, config.Summarizer.AgentModel)
		}
		return NewGeminiSummarizer(agent, tmpl), nil
	default:
		return nil, fmt.Errorf("%w: unknown summarizer engine %q", ErrSummary, config.Summarizer.Engine)
	}
}

func renderPrompt(tmpl *template.Template, text string) (string, error) {
	var buffer bytes.Buffer
	if err := tmpl.Execute(&buffer, map[string]interface{}{"TEXT": text}); err != nil {
		return "", fmt.Errorf("%w: render prompt: %v", ErrSummary, err)
	}
	return buffer.String(), nil
}

// OpenAISummarizer uses chat completions.
type OpenAISummarizer struct {
	client   *openai.Client
	model    string
	template *template.Template
}

func (o *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	prompt, err := renderPrompt(o.template, text)
	if err != nil {
		return "", err
	}
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(prompt),
		},
		Model:       o.model,
		Temperature: openai.Float(openAITemperature),
		MaxTokens:   openai.Int(openAIMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummary, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrSummary)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GeminiSummarizer uses a quota-aware Gemini model.
type GeminiSummarizer struct {
	model              *cloud.QuotaAwareGenerativeAIModel
	template           *template.Template
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

func NewGeminiSummarizer(agent *cloud.QuotaAwareGenerativeAIModel, tmpl *template.Template) *GeminiSummarizer {
	out := &GeminiSummarizer{model: agent, template: tmpl}
	meter := otel.Meter(cor.MeterName)
	out.inputTokenCounter, _ = meter.Int64Counter("summarizer.gemini.token.input")
	out.outputTokenCounter, _ = meter.Int64Counter("summarizer.gemini.token.output")
	out.retryCounter, _ = meter.Int64Counter("summarizer.gemini.token.retry")
	return out
}

func (g *GeminiSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	prompt, err := renderPrompt(g.template, text)
	if err != nil {
		return "", err
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: SystemPrompt}, {Text: prompt}},
	}}
	out, err := cloud.GenerateMultiModalResponse(ctx, g.inputTokenCounter, g.outputTokenCounter, g.retryCounter, g.model, contents)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummary, err)
	}
	return strings.TrimSpace(out), nil
}
