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

// Package stt turns an extracted audio track into timed narration segments.
// Engines are interchangeable behind Transcriber and are chosen by the
// stt.engine setting.
package stt

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
)

// ErrTranscription wraps every engine failure.
var ErrTranscription = errors.New("transcription failed")

// Transcriber converts an audio file into a transcription of videoFilename.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, videoFilename string) (*model.Transcription, error)
}

// DurationProber reports the length of a media file in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// New returns the engine selected by config.STT.Engine.
func New(config *cloud.Config, clients *cloud.ServiceClients, prober DurationProber) (Transcriber, error) {
	switch config.STT.Engine {
	case cloud.STTEngineDummy:
		return NewDummyTranscriber(), nil
	case cloud.STTEngineWhisper, cloud.STTEngineGPT4o:
		if clients.OpenAIClient == nil {
			return nil, fmt.Errorf("%w: stt engine %q needs %s", ErrTranscription, config.STT.Engine, cloud.EnvOpenAIAPIKey)
		}
		modelName, verbose := config.OpenAI.WhisperModel, true
		if config.STT.Engine == cloud.STTEngineGPT4o {
			modelName, verbose = config.OpenAI.TranscriptionModel, false
		}
		return NewOpenAITranscriber(clients.OpenAIClient, modelName, config.STT.Language, verbose, prober), nil
	case cloud.STTEngineGemini:
		agent, ok := clients.AgentModels[config.STT.AgentModel]
		if !ok {
			return nil, fmt.Errorf("%w: agent model %q is not available", ErrTranscription, config.STT.AgentModel)
		}
		return NewGeminiTranscriber(agent, config.PromptTemplates.TranscriptionPrompt, config.STT.Language, prober)
	default:
		return nil, fmt.Errorf("%w: unknown stt engine %q", ErrTranscription, config.STT.Engine)
	}
}

var sentenceBreak = regexp.MustCompile(`[。．\n]+`)

// SplitEvenly breaks text into sentences and spreads them evenly over
// duration seconds. It is used when an engine returns text without timings.
// Text with no sentence break becomes one segment covering the whole audio.
func SplitEvenly(text string, duration float64) []model.TranscriptionSegment {
	var sentences []string
	for _, s := range sentenceBreak.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		text = strings.TrimSpace(text)
		if text == "" {
			return []model.TranscriptionSegment{}
		}
		return []model.TranscriptionSegment{{Start: 0, End: duration, Text: text}}
	}

	step := duration / float64(len(sentences))
	out := make([]model.TranscriptionSegment, 0, len(sentences))
	for i, s := range sentences {
		out = append(out, model.TranscriptionSegment{
			Start: float64(i) * step,
			End:   float64(i+1) * step,
			Text:  s,
		})
	}
	return out
}
