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
	"log/slog"

	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/summarizer"
)

// Summarize attaches a summary to the transcription. A summarizer failure is
// logged and leaves the summary empty; it never fails the chain.
type Summarize struct {
	cor.BaseCommand
	summarizer summarizer.Summarizer
}

func NewSummarize(name string, s summarizer.Summarizer) *Summarize {
	out := &Summarize{BaseCommand: *cor.NewBaseCommand(name), summarizer: s}
	out.InputParamName = GetTranscriptionParameterName()
	out.OutputParamName = GetTranscriptionParameterName()
	return out
}

func (c *Summarize) IsExecutable(context cor.Context) bool {
	if c.summarizer == nil || !c.BaseCommand.IsExecutable(context) {
		return false
	}
	t, ok := cor.GetAs[*model.Transcription](context, c.GetInputParam())
	return ok && len(t.Segments) > 0
}

func (c *Summarize) Execute(context cor.Context) {
	transcription, _ := cor.GetAs[*model.Transcription](context, c.GetInputParam())

	summary, err := c.summarizer.Summarize(context.GetContext(), transcription.FullText())
	if err != nil {
		slog.WarnContext(context.GetContext(), "summary generation failed", "command", c.GetName(), "error", err)
		if c.ErrorCounter != nil {
			c.ErrorCounter.Add(context.GetContext(), 1)
		}
		return
	}
	transcription.Summary = model.StringPtr(summary)

	context.Add(c.GetOutputParam(), transcription)
	context.Add(cor.CtxOut, transcription)
	c.Succeed(context)
}
