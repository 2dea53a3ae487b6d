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

// Package model defines the core data structures for the application.
// This file, `transient.go`, contains the intermediate artifacts produced by the
// upstream collaborators (speech-to-text and scene detection). They are written
// once, persisted as JSON documents keyed by video id, and read back by the
// manual planner. Nothing mutates them after they are produced.
package model

import "strings"

// TranscriptionSegment is a single speech-recognition unit.
type TranscriptionSegment struct {
	Start   float64 `json:"start"`   // Start time in seconds.
	End     float64 `json:"end"`     // End time in seconds.
	Speaker *string `json:"speaker"` // Optional speaker id, null when the engine has no diarization.
	Text    string  `json:"text"`    // Recognised text.
}

// Transcription is the full speech-to-text result for one video.
type Transcription struct {
	VideoFilename string                 `json:"video_filename"` // Name of the source video file.
	DurationSec   float64                `json:"duration_sec"`   // Length of the audio in seconds.
	Segments      []TranscriptionSegment `json:"segments"`       // Segments ordered by start time.
	Summary       *string                `json:"summary"`        // Optional summary of the whole narration.
}

// FullText joins every segment's text with a single space.
func (t *Transcription) FullText() string {
	texts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		texts = append(texts, s.Text)
	}
	return strings.Join(texts, " ")
}

// SceneInfo marks a detected visual transition and the frame captured there.
type SceneInfo struct {
	Time      float64 `json:"time"`       // Transition time in seconds.
	FramePath string  `json:"frame_path"` // Opaque locator of the captured frame (path, gs:// or https URI).
}

// SceneDetectionResult is the scene detector's output for one video.
type SceneDetectionResult struct {
	VideoFilename string      `json:"video_filename"`
	Scenes        []SceneInfo `json:"scenes"` // Marks ordered by time.
}

// MediaFormatFilter describes the frames pulled out of a video.
type MediaFormatFilter struct {
	Format string // e.g., "jpg", "png"
	Width  int    // Target width in pixels, 0 keeps the source width.
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
