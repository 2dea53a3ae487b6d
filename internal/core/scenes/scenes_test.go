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

package scenes_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/scenes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const showInfo = `[Parsed_showinfo_1 @ 0x7f] config in time_base: 1/15360, frame_rate: 30/1
[Parsed_showinfo_1 @ 0x7f] n:   0 pts:  72192 pts_time:4.7     duration:    512 fmt:yuv420p
[Parsed_showinfo_1 @ 0x7f] n:   1 pts:  79872 pts_time:5.2     duration:    512 fmt:yuv420p
[Parsed_showinfo_1 @ 0x7f] n:   2 pts: 184320 pts_time:12      duration:    512 fmt:yuv420p
`

type fakeTools struct {
	stderr   string
	duration float64
	frames   []string
	failRun  bool
}

func (f *fakeTools) RunFFmpeg(_ context.Context, args ...string) ([]byte, error) {
	if f.failRun {
		return nil, errors.New("ffmpeg missing")
	}
	return []byte(f.stderr), nil
}

func (f *fakeTools) Duration(context.Context, string) (float64, error) {
	return f.duration, nil
}

func (f *fakeTools) ExtractFrame(_ context.Context, _ string, _ float64, outputPath string, _ int) error {
	f.frames = append(f.frames, outputPath)
	return nil
}

func TestParseShowInfo(t *testing.T) {
	assert.Equal(t, []float64{4.7, 5.2, 12}, scenes.ParseShowInfo([]byte(showInfo)))
	assert.Empty(t, scenes.ParseShowInfo([]byte("nothing here")))
}

func TestFilterTimestamps(t *testing.T) {
	assert.Equal(t, []float64{0, 4.7, 12}, scenes.FilterTimestamps([]float64{4.7, 5.2, 12}, 2.0))
	assert.Equal(t, []float64{0, 3}, scenes.FilterTimestamps([]float64{0, 1, 3}, 2.0))
	assert.Equal(t, []float64{0}, scenes.FilterTimestamps(nil, 2.0))
}

func TestFrameName(t *testing.T) {
	assert.Equal(t, "scene_0003_12.50s.jpg", scenes.FrameName(3, 12.5, "jpg"))
	assert.Equal(t, "scene_0000_0.00s.jpg", scenes.FrameName(0, 0, ""))
}

func TestFFmpegDetector(t *testing.T) {
	tools := &fakeTools{stderr: showInfo}
	config := cloud.NewConfig().Scenes
	detector, err := scenes.New(config, tools)
	require.NoError(t, err)

	dir := t.TempDir()
	result, err := detector.DetectScenes(context.Background(), "/videos/demo.mp4", dir)
	require.NoError(t, err)

	assert.Equal(t, "demo.mp4", result.VideoFilename)
	require.Len(t, result.Scenes, 3)
	assert.Equal(t, 0.0, result.Scenes[0].Time)
	assert.Equal(t, filepath.Join(dir, "scene_0001_4.70s.jpg"), result.Scenes[1].FramePath)
	assert.Equal(t, 12.0, result.Scenes[2].Time)
	assert.Len(t, tools.frames, 3)
}

func TestFFmpegDetectorFailure(t *testing.T) {
	detector, err := scenes.New(cloud.NewConfig().Scenes, &fakeTools{failRun: true})
	require.NoError(t, err)

	_, err = detector.DetectScenes(context.Background(), "demo.mp4", t.TempDir())
	assert.ErrorIs(t, err, scenes.ErrSceneDetection)
}

func TestIntervalDetector(t *testing.T) {
	config := cloud.NewConfig().Scenes
	config.Method = cloud.SceneMethodInterval
	config.IntervalSec = 5
	tools := &fakeTools{duration: 12}
	detector, err := scenes.New(config, tools)
	require.NoError(t, err)

	result, err := detector.DetectScenes(context.Background(), "demo.mp4", t.TempDir())
	require.NoError(t, err)
	require.Len(t, result.Scenes, 3)
	assert.Equal(t, 10.0, result.Scenes[2].Time)
	assert.True(t, strings.HasSuffix(result.Scenes[2].FramePath, "scene_0002_10.00s.jpg"))
}

func TestNewUnknownMethod(t *testing.T) {
	_, err := scenes.New(cloud.Scenes{Method: "histogram"}, &fakeTools{})
	assert.ErrorIs(t, err, scenes.ErrSceneDetection)
}
