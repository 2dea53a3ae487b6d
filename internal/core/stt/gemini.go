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

package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/template"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

// DefaultTranscriptionPrompt is used when prompt_templates.transcription is empty.
const DefaultTranscriptionPrompt = `Transcribe the narration of the attached audio track from a screen recording.
Language: {{ .LANGUAGE }}.
Split the narration into short segments at sentence boundaries and give each
segment its start and end time in seconds from the beginning of the audio.
Return only JSON in exactly this shape:
{{ .EXAMPLE_JSON }}`

// GeminiTranscriber sends the audio inline to a Gemini model and asks for
// timed segments as JSON.
type GeminiTranscriber struct {
	model              *cloud.QuotaAwareGenerativeAIModel
	template           *template.Template
	language           string
	prober             DurationProber
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

func NewGeminiTranscriber(agent *cloud.QuotaAwareGenerativeAIModel, prompt string, language string, prober DurationProber) (*GeminiTranscriber, error) {
	if prompt == "" {
		prompt = DefaultTranscriptionPrompt
	}
	tmpl, err := template.New("transcription").Parse(prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: parse prompt: %v", ErrTranscription, err)
	}
	out := &GeminiTranscriber{model: agent, template: tmpl, language: language, prober: prober}

	meter := otel.Meter(cor.MeterName)
	out.inputTokenCounter, _ = meter.Int64Counter("stt.gemini.token.input")
	out.outputTokenCounter, _ = meter.Int64Counter("stt.gemini.token.output")
	out.retryCounter, _ = meter.Int64Counter("stt.gemini.token.retry")
	return out, nil
}

// Prompt renders the transcription prompt.
func (g *GeminiTranscriber) Prompt() (string, error) {
	example, err := json.Marshal(model.GetExampleTranscription())
	if err != nil {
		return "", err
	}
	var buffer bytes.Buffer
	err = g.template.Execute(&buffer, map[string]interface{}{
		"LANGUAGE":     g.language,
		"EXAMPLE_JSON": string(example),
	})
	return buffer.String(), err
}

func (g *GeminiTranscriber) Transcribe(ctx context.Context, audioPath string, videoFilename string) (*model.Transcription, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	prompt, err := g.Prompt()
	if err != nil {
		return nil, fmt.Errorf("%w: render prompt: %v", ErrTranscription, err)
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
			cloud.NewInlineData(audio, "audio/wav"),
		},
	}}
	value, err := cloud.GenerateMultiModalResponse(ctx, g.inputTokenCounter, g.outputTokenCounter, g.retryCounter, g.model, contents)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini request failed: %v", ErrTranscription, err)
	}

	out, err := ParseGeminiResponse(value)
	if err != nil {
		return nil, err
	}
	out.VideoFilename = videoFilename
	if out.DurationSec <= 0 && g.prober != nil {
		if d, err := g.prober.Duration(ctx, audioPath); err == nil {
			out.DurationSec = d
		}
	}
	return out, nil
}

// ParseGeminiResponse decodes the model's JSON answer.
func ParseGeminiResponse(value string) (*model.Transcription, error) {
	out := &model.Transcription{}
	if err := json.Unmarshal([]byte(cloud.StripCodeFence(value)), out); err != nil {
		return nil, fmt.Errorf("%w: invalid model response: %v", ErrTranscription, err)
	}
	if out.Segments == nil {
		out.Segments = []model.TranscriptionSegment{}
	}
	if out.DurationSec == 0 && len(out.Segments) > 0 {
		out.DurationSec = out.Segments[len(out.Segments)-1].End
	}
	return out, nil
}
