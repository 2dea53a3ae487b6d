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

// Package planner merges the narration timeline and the scene-change timeline
// of a video into an ordered list of manual steps.
//
// A new step starts at a speech segment when there is no open step yet, when
// a scene change falls inside the segment, or when the silence between the
// open step and the segment is longer than the auto-merge gap. Otherwise the
// segment is folded into the open step. Every finished step gets the scene
// frame closest to its midpoint as its screenshot.
package planner

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
)

const (
	DefaultAutoMergeGap    = 5.0
	DefaultMinStepDuration = 3.0

	// MaxTitleLength is the number of characters kept from the first
	// narration line when building a step title.
	MaxTitleLength = 30
	titleEllipsis  = "..."
	defaultSuffix  = "操作マニュアル"
)

// Config holds the planner's tuning values.
type Config struct {
	// AutoMergeGap is the largest silence, in seconds, that still allows two
	// segments to share a step. The comparison is strict: a gap equal to the
	// threshold merges.
	AutoMergeGap float64
	// MinStepDuration is exposed to callers (e.g. UIs flagging very short
	// steps). It does not influence how steps are merged.
	MinStepDuration float64
}

// DefaultConfig returns the planner defaults.
func DefaultConfig() Config {
	return Config{
		AutoMergeGap:    DefaultAutoMergeGap,
		MinStepDuration: DefaultMinStepDuration,
	}
}

// Option customises a Planner.
type Option func(*Planner)

// WithClock replaces the clock used to stamp created_at.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		p.now = now
	}
}

// Planner builds manual plans. It holds no mutable state and is safe for
// concurrent use.
type Planner struct {
	config Config
	now    func() time.Time
}

// New creates a planner for the given configuration.
func New(config Config, opts ...Option) *Planner {
	p := &Planner{config: config, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the configuration the planner was created with.
func (p *Planner) Config() Config {
	return p.config
}

// accumulator is the step being built while walking the segments.
type accumulator struct {
	start float64
	end   float64
	texts []string
}

// CreatePlan merges the transcription and the detected scenes into a plan.
// An empty title is replaced by "<video file name> 操作マニュアル". Neither
// input is modified.
func (p *Planner) CreatePlan(transcription *model.Transcription, scenes *model.SceneDetectionResult, title string) *model.ManualPlan {
	segments := sortedSegments(transcription.Segments)
	var marks []model.SceneInfo
	if scenes != nil {
		marks = sortedScenes(scenes.Scenes)
	}

	steps := make([]model.ManualStep, 0)
	var current *accumulator

	for _, seg := range segments {
		if current == nil || hasSceneChange(seg, marks) || seg.Start-current.end > p.config.AutoMergeGap {
			if current != nil {
				steps = append(steps, finalizeStep(current, marks))
			}
			current = &accumulator{start: seg.Start, end: seg.End, texts: []string{seg.Text}}
			continue
		}
		current.end = seg.End
		current.texts = append(current.texts, seg.Text)
	}
	if current != nil {
		steps = append(steps, finalizeStep(current, marks))
	}

	if title == "" {
		title = fmt.Sprintf("%s %s", transcription.VideoFilename, defaultSuffix)
	}

	return &model.ManualPlan{
		Title:       title,
		SourceVideo: transcription.VideoFilename,
		CreatedAt:   p.now(),
		Steps:       steps,
	}
}

// hasSceneChange reports whether any scene mark lies inside [seg.Start, seg.End].
func hasSceneChange(seg model.TranscriptionSegment, marks []model.SceneInfo) bool {
	for _, m := range marks {
		if seg.Start <= m.Time && m.Time <= seg.End {
			return true
		}
	}
	return false
}

func finalizeStep(acc *accumulator, marks []model.SceneInfo) model.ManualStep {
	return model.ManualStep{
		Title:     TruncateTitle(acc.texts[0]),
		Narration: strings.Join(acc.texts, " "),
		Image:     FindNearestImage(acc.start, acc.end, marks),
		Start:     acc.start,
		End:       acc.end,
		Selected:  true,
	}
}

// TruncateTitle cuts text to MaxTitleLength characters and appends "..."
// when anything was removed.
func TruncateTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxTitleLength {
		return text
	}
	return string(runes[:MaxTitleLength]) + titleEllipsis
}

// FindNearestImage returns the frame of the scene mark closest to the middle
// of [start, end]. Marks inside the span win over marks outside it; ties go
// to the earliest mark. It returns nil when there are no marks.
func FindNearestImage(start, end float64, marks []model.SceneInfo) *string {
	if len(marks) == 0 {
		return nil
	}
	mid := (start + end) / 2

	best := -1
	bestDist := math.Inf(1)
	for i, m := range marks {
		if m.Time < start || m.Time > end {
			continue
		}
		if d := math.Abs(m.Time - mid); d < bestDist {
			best, bestDist = i, d
		}
	}

	if best < 0 {
		for i, m := range marks {
			if d := math.Abs(m.Time - mid); d < bestDist {
				best, bestDist = i, d
			}
		}
	}

	frame := marks[best].FramePath
	return &frame
}

// sortedSegments returns the segments ordered by start. The input is returned
// as-is when it is already ordered; otherwise a stably sorted copy is made.
func sortedSegments(in []model.TranscriptionSegment) []model.TranscriptionSegment {
	byStart := func(a, b model.TranscriptionSegment) int {
		return compareFloat(a.Start, b.Start)
	}
	if slices.IsSortedFunc(in, byStart) {
		return in
	}
	out := slices.Clone(in)
	slices.SortStableFunc(out, byStart)
	return out
}

func sortedScenes(in []model.SceneInfo) []model.SceneInfo {
	byTime := func(a, b model.SceneInfo) int {
		return compareFloat(a.Time, b.Time)
	}
	if slices.IsSortedFunc(in, byTime) {
		return in
	}
	out := slices.Clone(in)
	slices.SortStableFunc(out, byTime)
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
