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

	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
)

// DummyTranscriber returns canned narration without reading the audio. It
// lets the whole pipeline run without any speech service.
type DummyTranscriber struct{}

func NewDummyTranscriber() *DummyTranscriber {
	return &DummyTranscriber{}
}

func (d *DummyTranscriber) Transcribe(_ context.Context, _ string, videoFilename string) (*model.Transcription, error) {
	segments := model.GetDemoSegments()
	return &model.Transcription{
		VideoFilename: videoFilename,
		DurationSec:   segments[len(segments)-1].End,
		Segments:      segments,
	}, nil
}
