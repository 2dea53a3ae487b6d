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

// Package commands contains the chain-of-responsibility commands that make up
// the manual generation workflows: ingest triggers, audio extraction,
// transcription, scene detection, frame upload, planning and persistence.
//
// Commands exchange data through well-known context keys. Each key has an
// accessor so that typos surface at compile time.
package commands

import "errors"

// GetVideoIDParameterName is the key of the video id (string).
func GetVideoIDParameterName() string {
	return "__VIDEO_ID__"
}

// GetVideoPathParameterName is the key of the local source video path (string).
func GetVideoPathParameterName() string {
	return "__VIDEO_PATH__"
}

// GetVideoFilenameParameterName is the key of the name reported in artifacts (string).
func GetVideoFilenameParameterName() string {
	return "__VIDEO_FILENAME__"
}

// GetAudioPathParameterName is the key of the extracted WAV path (string).
func GetAudioPathParameterName() string {
	return "__AUDIO_PATH__"
}

// GetTranscriptionParameterName is the key of the *model.Transcription.
func GetTranscriptionParameterName() string {
	return "__TRANSCRIPTION__"
}

// GetScenesParameterName is the key of the *model.SceneDetectionResult.
func GetScenesParameterName() string {
	return "__SCENES__"
}

// GetPlanParameterName is the key of the *model.ManualPlan.
func GetPlanParameterName() string {
	return "__MANUAL_PLAN__"
}

// GetPlanTitleParameterName is the key of the optional plan title (string).
func GetPlanTitleParameterName() string {
	return "__PLAN_TITLE__"
}

// GetFrameDirParameterName is the key of the directory holding captured frames (string).
func GetFrameDirParameterName() string {
	return "__FRAME_DIR__"
}

var errNotTranscription = errors.New("input is not a transcription")
