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

package workflow

import (
	"github.com/jaycherian/gcp-go-video-manual/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
)

// TranscriptionWorkflow extracts the audio of a local video, transcribes it,
// adds a summary when a summarizer is configured and stores the result.
//
// Context in: GetVideoIDParameterName, GetVideoPathParameterName and
// optionally GetVideoFilenameParameterName.
type TranscriptionWorkflow struct {
	cor.BaseCommand
	deps  *Collaborators
	chain cor.Chain
}

func NewTranscriptionWorkflow(deps *Collaborators) *TranscriptionWorkflow {
	out := &TranscriptionWorkflow{BaseCommand: *cor.NewBaseCommand("transcription-workflow"), deps: deps}
	out.initializeChain()
	return out
}

func (w *TranscriptionWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewAudioExtractor("extract-audio", w.deps.Audio))
	out.AddCommand(commands.NewTranscribe("transcribe-audio", w.deps.Transcriber))
	out.AddCommand(commands.NewSummarize("summarize-transcription", w.deps.Summarizer))
	out.AddCommand(commands.NewArtifactPersist("persist-transcription", w.deps.Artifacts, commands.GetTranscriptionParameterName()))
	w.chain = out
}

func (w *TranscriptionWorkflow) IsExecutable(context cor.Context) bool {
	return w.chain.IsExecutable(context)
}

func (w *TranscriptionWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}
