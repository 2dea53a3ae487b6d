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

// Package scenes finds the moments where the picture of a screen recording
// changes and captures one frame at each of them.
package scenes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
)

// ErrSceneDetection wraps every detector failure.
var ErrSceneDetection = errors.New("scene detection failed")

// Detector finds scene changes in videoPath and writes their frames to outputDir.
type Detector interface {
	DetectScenes(ctx context.Context, videoPath string, outputDir string) (*model.SceneDetectionResult, error)
}

// Tooling is the part of media.FFmpeg the detectors need.
type Tooling interface {
	RunFFmpeg(ctx context.Context, args ...string) ([]byte, error)
	Duration(ctx context.Context, path string) (float64, error)
	ExtractFrame(ctx context.Context, videoPath string, timestamp float64, outputPath string, width int) error
}

// New returns the detector selected by config.Scenes.Method.
func New(config cloud.Scenes, tools Tooling) (Detector, error) {
	switch config.Method {
	case cloud.SceneMethodFFmpeg:
		return &FFmpegDetector{config: config, tools: tools}, nil
	case cloud.SceneMethodInterval:
		return &IntervalDetector{config: config, tools: tools}, nil
	default:
		return nil, fmt.Errorf("%w: unknown method %q", ErrSceneDetection, config.Method)
	}
}

// FrameName is the file name of the index-th captured frame at timestamp.
func FrameName(index int, timestamp float64, format string) string {
	if format == "" {
		format = "jpg"
	}
	return fmt.Sprintf("scene_%04d_%.2fs.%s", index, timestamp, format)
}

// FFmpegDetector uses ffmpeg's scene score (select filter) and reads the
// selected frame times from the showinfo filter output.
type FFmpegDetector struct {
	config cloud.Scenes
	tools  Tooling
}

var ptsTime = regexp.MustCompile(`pts_time:\s*([0-9]+(?:\.[0-9]+)?)`)

// ParseShowInfo extracts every pts_time value from ffmpeg showinfo output.
func ParseShowInfo(stderr []byte) []float64 {
	matches := ptsTime.FindAllSubmatch(stderr, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		if v, err := strconv.ParseFloat(string(m[1]), 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// FilterTimestamps drops changes closer than minGap seconds to the previous
// kept change and makes sure the list starts at 0.0 so the opening screen is
// always captured.
func FilterTimestamps(times []float64, minGap float64) []float64 {
	out := make([]float64, 0, len(times)+1)
	for _, t := range times {
		if len(out) > 0 && t-out[len(out)-1] < minGap {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 || out[0] > 0 {
		out = append([]float64{0}, out...)
	}
	return out
}

func (d *FFmpegDetector) DetectScenes(ctx context.Context, videoPath string, outputDir string) (*model.SceneDetectionResult, error) {
	threshold := d.config.Threshold / 100
	filter := fmt.Sprintf("select='gt(scene,%s)',showinfo", strconv.FormatFloat(threshold, 'f', -1, 64))
	stderr, err := d.tools.RunFFmpeg(ctx, "-hide_banner", "-i", videoPath, "-vf", filter, "-vsync", "vfr", "-f", "null", "-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSceneDetection, err)
	}
	times := FilterTimestamps(ParseShowInfo(stderr), d.config.MinSceneDurationSec)
	slog.InfoContext(ctx, "scene changes detected", "video", filepath.Base(videoPath), "count", len(times), "threshold", d.config.Threshold)
	return captureFrames(ctx, d.tools, d.config, videoPath, outputDir, times)
}

// IntervalDetector captures a frame every IntervalSec seconds regardless of
// content.
type IntervalDetector struct {
	config cloud.Scenes
	tools  Tooling
}

// IntervalTimestamps returns 0, step, 2*step... strictly below duration.
func IntervalTimestamps(duration, step float64) []float64 {
	out := []float64{0}
	for t := step; t < duration; t += step {
		out = append(out, t)
	}
	return out
}

func (d *IntervalDetector) DetectScenes(ctx context.Context, videoPath string, outputDir string) (*model.SceneDetectionResult, error) {
	duration, err := d.tools.Duration(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSceneDetection, err)
	}
	return captureFrames(ctx, d.tools, d.config, videoPath, outputDir, IntervalTimestamps(duration, d.config.IntervalSec))
}

func captureFrames(ctx context.Context, tools Tooling, config cloud.Scenes, videoPath, outputDir string, times []float64) (*model.SceneDetectionResult, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSceneDetection, err)
	}
	result := &model.SceneDetectionResult{
		VideoFilename: filepath.Base(videoPath),
		Scenes:        make([]model.SceneInfo, 0, len(times)),
	}
	for i, t := range times {
		framePath := filepath.Join(outputDir, FrameName(i, t, config.FrameFormat))
		if err := tools.ExtractFrame(ctx, videoPath, t, framePath, config.FrameWidth); err != nil {
			return nil, fmt.Errorf("%w: frame at %.2fs: %v", ErrSceneDetection, t, err)
		}
		result.Scenes = append(result.Scenes, model.SceneInfo{Time: t, FramePath: framePath})
	}
	return result, nil
}
