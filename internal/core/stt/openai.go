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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/openai/openai-go"
)

// OpenAITranscriber calls the OpenAI audio transcription endpoint. Whisper
// models return timed segments (verbose JSON); newer models only return text,
// which is then split evenly over the audio duration.
type OpenAITranscriber struct {
	client   *openai.Client
	model    string
	language string
	verbose  bool
	prober   DurationProber
}

func NewOpenAITranscriber(client *openai.Client, model string, language string, verbose bool, prober DurationProber) *OpenAITranscriber {
	return &OpenAITranscriber{client: client, model: model, language: language, verbose: verbose, prober: prober}
}

// verboseTranscription is the subset of the verbose_json payload we read.
type verboseTranscription struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (o *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string, videoFilename string) (*model.Transcription, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	defer f.Close()

	params := openai.AudioTranscriptionNewParams{
		File:           f,
		Model:          o.model,
		ResponseFormat: openai.AudioResponseFormatJSON,
	}
	if o.verbose {
		params.ResponseFormat = openai.AudioResponseFormatVerboseJSON
	}
	if o.language != "" {
		params.Language = openai.String(o.language)
	}

	resp, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: openai %s: %v", ErrTranscription, o.model, err)
	}

	out, err := DecodeVerboseJSON(resp.RawJSON())
	if err != nil {
		return nil, err
	}
	out.VideoFilename = videoFilename
	if out.Text() == "" {
		out.Transcription.Segments = []model.TranscriptionSegment{}
		return out.Transcription, nil
	}

	if len(out.Transcription.Segments) == 0 {
		duration := out.Transcription.DurationSec
		if duration <= 0 && o.prober != nil {
			if duration, err = o.prober.Duration(ctx, audioPath); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
			}
			out.Transcription.DurationSec = duration
		}
		slog.DebugContext(ctx, "transcription has no timings, splitting evenly", "model", o.model, "duration", duration)
		out.Transcription.Segments = SplitEvenly(out.Text(), duration)
	}
	return out.Transcription, nil
}

// DecodedTranscription pairs the parsed transcription with the raw text.
type DecodedTranscription struct {
	*model.Transcription
	text string
}

func (d DecodedTranscription) Text() string {
	return d.text
}

// DecodeVerboseJSON parses a transcription response body. Segment text is
// trimmed and empty segments are dropped.
func DecodeVerboseJSON(raw string) (DecodedTranscription, error) {
	var v verboseTranscription
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return DecodedTranscription{}, fmt.Errorf("%w: decode response: %v", ErrTranscription, err)
	}
	out := &model.Transcription{
		DurationSec: v.Duration,
		Segments:    make([]model.TranscriptionSegment, 0, len(v.Segments)),
	}
	for _, s := range v.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		out.Segments = append(out.Segments, model.TranscriptionSegment{Start: s.Start, End: s.End, Text: text})
	}
	if out.DurationSec == 0 && len(out.Segments) > 0 {
		out.DurationSec = out.Segments[len(out.Segments)-1].End
	}
	return DecodedTranscription{Transcription: out, text: strings.TrimSpace(v.Text)}, nil
}
