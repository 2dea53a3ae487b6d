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

package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/stt"
)

// Transcribe runs the configured speech-to-text engine over the extracted
// audio and stores the *model.Transcription under GetTranscriptionParameterName().
type Transcribe struct {
	cor.BaseCommand
	transcriber stt.Transcriber
}

func NewTranscribe(name string, transcriber stt.Transcriber) *Transcribe {
	out := &Transcribe{BaseCommand: *cor.NewBaseCommand(name), transcriber: transcriber}
	out.InputParamName = GetAudioPathParameterName()
	out.OutputParamName = GetTranscriptionParameterName()
	return out
}

// videoFilename is the name recorded in artifacts, falling back to the base
// name of the local video.
func videoFilename(context cor.Context) string {
	if name, ok := cor.GetAs[string](context, GetVideoFilenameParameterName()); ok && name != "" {
		return name
	}
	if p, ok := cor.GetAs[string](context, GetVideoPathParameterName()); ok {
		return filepath.Base(p)
	}
	return ""
}

func (c *Transcribe) Execute(context cor.Context) {
	audioPath, _ := cor.GetAs[string](context, c.GetInputParam())

	ctx, span := c.Tracer.Start(context.GetContext(), fmt.Sprintf("%s_transcribe", c.GetName()))
	defer span.End()

	transcription, err := c.transcriber.Transcribe(ctx, audioPath, videoFilename(context))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.Fail(context, err)
		return
	}
	span.SetAttributes(
		attribute.Int("segments", len(transcription.Segments)),
		attribute.Float64("duration_sec", transcription.DurationSec))
	slog.InfoContext(ctx, "transcription complete", "video", transcription.VideoFilename, "segments", len(transcription.Segments))

	context.Add(c.GetOutputParam(), transcription)
	context.Add(cor.CtxOut, transcription)
	c.Succeed(context)
}
