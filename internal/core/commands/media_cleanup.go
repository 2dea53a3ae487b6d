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
	"log/slog"
	"os"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
)

// MediaCleanup removes the local frame directory once every frame of the
// scene result lives in Cloud Storage. Local-only frames are kept because the
// stored plan still points at them.
type MediaCleanup struct {
	cor.BaseCommand
}

func NewMediaCleanup(name string) *MediaCleanup {
	out := &MediaCleanup{BaseCommand: *cor.NewBaseCommand(name)}
	out.InputParamName = GetFrameDirParameterName()
	return out
}

func (v *MediaCleanup) IsExecutable(context cor.Context) bool {
	if !v.BaseCommand.IsExecutable(context) {
		return false
	}
	result, ok := cor.GetAs[*model.SceneDetectionResult](context, GetScenesParameterName())
	if !ok {
		return false
	}
	for _, s := range result.Scenes {
		if !cloud.IsGCSURI(s.FramePath) {
			return false
		}
	}
	return true
}

func (v *MediaCleanup) Execute(context cor.Context) {
	dir, _ := cor.GetAs[string](context, v.GetInputParam())
	if err := os.RemoveAll(dir); err != nil {
		// Leftover frames are harmless; the chain has already produced its artifacts.
		slog.WarnContext(context.GetContext(), "failed to remove frame directory", "dir", dir, "error", err)
		return
	}
	v.Succeed(context)
}
