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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/scenes"
)

// SceneDetect finds scene changes in the local video and captures a frame at
// each one under <captureDir>/<video id>.
type SceneDetect struct {
	cor.BaseCommand
	detector   scenes.Detector
	captureDir string
}

func NewSceneDetect(name string, detector scenes.Detector, captureDir string) *SceneDetect {
	out := &SceneDetect{BaseCommand: *cor.NewBaseCommand(name), detector: detector, captureDir: captureDir}
	out.InputParamName = GetVideoPathParameterName()
	out.OutputParamName = GetScenesParameterName()
	return out
}

func (c *SceneDetect) IsExecutable(context cor.Context) bool {
	_, ok := cor.GetAs[string](context, GetVideoIDParameterName())
	return ok && c.BaseCommand.IsExecutable(context)
}

func (c *SceneDetect) Execute(context cor.Context) {
	videoPath, _ := cor.GetAs[string](context, c.GetInputParam())
	videoID, _ := cor.GetAs[string](context, GetVideoIDParameterName())

	frameDir := filepath.Join(c.captureDir, videoID)
	if err := os.MkdirAll(frameDir, 0o755); err != nil {
		c.Fail(context, fmt.Errorf("could not create frame directory: %w", err))
		return
	}

	result, err := c.detector.DetectScenes(context.GetContext(), videoPath, frameDir)
	if err != nil {
		c.Fail(context, err)
		return
	}
	if name := videoFilename(context); name != "" {
		result.VideoFilename = name
	}
	slog.InfoContext(context.GetContext(), "scene detection complete", "video_id", videoID, "scenes", len(result.Scenes))

	context.Add(GetFrameDirParameterName(), frameDir)
	context.Add(c.GetOutputParam(), result)
	context.Add(cor.CtxOut, result)
	c.Succeed(context)
}
