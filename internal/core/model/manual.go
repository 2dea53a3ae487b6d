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

package model

import "time"

// ManualStep is one step of a generated manual. Title, narration and the time
// span are fixed when the planner creates the step; note, image and selected
// may be edited afterwards.
type ManualStep struct {
	Title     string  `json:"title"`
	Narration string  `json:"narration"`
	Note      *string `json:"note"`
	Image     *string `json:"image"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Selected  bool    `json:"selected"`
}

// Duration is the length of the step in seconds.
func (s ManualStep) Duration() float64 {
	return s.End - s.Start
}

// ManualPlan is the ordered list of steps for one source video. Step order is
// the video's chronology and is preserved through every read and write.
type ManualPlan struct {
	Title       string       `json:"title"`
	SourceVideo string       `json:"source_video"`
	CreatedAt   time.Time    `json:"created_at"`
	Steps       []ManualStep `json:"steps"`
}

// Processing states reported by the process endpoints.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Export formats.
const (
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
)

// VideoUploadResponse is returned after a video has been stored.
type VideoUploadResponse struct {
	VideoID     string   `json:"video_id"`
	Filename    string   `json:"filename"`
	SizeBytes   int64    `json:"size_bytes"`
	DurationSec *float64 `json:"duration_sec"`
}

// VideoInfo describes a stored source video.
type VideoInfo struct {
	VideoID   string `json:"video_id"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Path      string `json:"path"`
}

// ProcessStatusResponse reports the outcome of a transcription or scene
// detection run.
type ProcessStatusResponse struct {
	VideoID    string  `json:"video_id"`
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	OutputPath *string `json:"output_path"`
}

// CreatePlanRequest asks for a new plan built from stored artifacts.
type CreatePlanRequest struct {
	VideoID string `json:"video_id" binding:"required"`
	Title   string `json:"title"`
}

// CaptureSelectionRequest maps step indexes to their selected flag. JSON
// object keys arrive as strings ("0", "1", ...) and decode into ints.
type CaptureSelectionRequest struct {
	VideoID    string       `json:"video_id" binding:"required"`
	Selections map[int]bool `json:"selections"`
}

// ExportRequest asks for a rendered manual.
type ExportRequest struct {
	VideoID  string `json:"video_id" binding:"required"`
	Format   string `json:"format"`
	Template string `json:"template"`
}

// ExportResponse points at a rendered manual.
type ExportResponse struct {
	VideoID     string `json:"video_id"`
	Format      string `json:"format"`
	OutputPath  string `json:"output_path"`
	DownloadURL string `json:"download_url"`
}
