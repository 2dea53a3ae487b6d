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
	goctx "context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
)

// AudioTool extracts the audio track of a video as WAV.
type AudioTool interface {
	ExtractAudio(ctx goctx.Context, videoPath, outputPath string) error
}

// AudioExtractor writes the audio track of the video at
// GetVideoPathParameterName() to a temporary WAV file.
type AudioExtractor struct {
	cor.BaseCommand
	tool AudioTool
}

func NewAudioExtractor(name string, tool AudioTool) *AudioExtractor {
	out := &AudioExtractor{BaseCommand: *cor.NewBaseCommand(name), tool: tool}
	out.InputParamName = GetVideoPathParameterName()
	out.OutputParamName = GetAudioPathParameterName()
	return out
}

func (c *AudioExtractor) Execute(context cor.Context) {
	videoPath, _ := cor.GetAs[string](context, c.GetInputParam())

	dir, err := os.MkdirTemp("", "audio-")
	if err != nil {
		c.Fail(context, fmt.Errorf("could not create temp dir: %w", err))
		return
	}
	context.AddTempFile(dir)

	audioPath := filepath.Join(dir, "audio.wav")
	if err := c.tool.ExtractAudio(context.GetContext(), videoPath, audioPath); err != nil {
		c.Fail(context, fmt.Errorf("failed to extract audio: %w", err))
		return
	}

	context.Add(c.GetOutputParam(), audioPath)
	context.Add(cor.CtxOut, audioPath)
	c.Succeed(context)
}
