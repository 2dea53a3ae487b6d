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

import (
	"time"

	"cloud.google.com/go/bigquery"
)

// PlanRecord is the catalog row written to BigQuery for every generated plan.
// It flattens the plan so it can be listed and queried without reading the
// JSON document back from the artifact store.
type PlanRecord struct {
	VideoID       string        `json:"video_id" bigquery:"video_id"`
	Title         string        `json:"title" bigquery:"title"`
	SourceVideo   string        `json:"source_video" bigquery:"source_video"`
	CreatedAt     time.Time     `json:"created_at" bigquery:"created_at"`
	StepCount     int           `json:"step_count" bigquery:"step_count"`
	SelectedCount int           `json:"selected_count" bigquery:"selected_count"`
	DurationSec   float64       `json:"duration_sec" bigquery:"duration_sec"`
	Steps         []*StepRecord `json:"steps,omitempty" bigquery:"steps"`
}

// StepRecord is the nested, repeated step column of PlanRecord.
type StepRecord struct {
	Sequence  int                 `json:"sequence" bigquery:"sequence"`
	Title     string              `json:"title" bigquery:"title"`
	Narration string              `json:"narration" bigquery:"narration"`
	Image     bigquery.NullString `json:"image" bigquery:"image"`
	Start     float64             `json:"start" bigquery:"start"`
	End       float64             `json:"end" bigquery:"end"`
	Selected  bool                `json:"selected" bigquery:"selected"`
}

// NewPlanRecord flattens plan into a catalog row for videoID.
func NewPlanRecord(videoID string, plan *ManualPlan) *PlanRecord {
	out := &PlanRecord{
		VideoID:     videoID,
		Title:       plan.Title,
		SourceVideo: plan.SourceVideo,
		CreatedAt:   plan.CreatedAt,
		StepCount:   len(plan.Steps),
		Steps:       make([]*StepRecord, 0, len(plan.Steps)),
	}
	for i, s := range plan.Steps {
		if s.Selected {
			out.SelectedCount++
		}
		if s.End > out.DurationSec {
			out.DurationSec = s.End
		}
		rec := &StepRecord{
			Sequence:  i + 1,
			Title:     s.Title,
			Narration: s.Narration,
			Start:     s.Start,
			End:       s.End,
			Selected:  s.Selected,
		}
		if s.Image != nil {
			rec.Image = bigquery.NullString{StringVal: *s.Image, Valid: true}
		}
		out.Steps = append(out.Steps, rec)
	}
	return out
}
