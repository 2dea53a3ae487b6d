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

package workflow

import (
	"github.com/jaycherian/gcp-go-video-manual/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
)

// SceneDetectionWorkflow captures a frame at every scene change, optionally
// moves the frames to Cloud Storage and stores the scene result.
type SceneDetectionWorkflow struct {
	cor.BaseCommand
	deps        *Collaborators
	captureDir  string
	frameBucket string
	workers     int
	chain       cor.Chain
}

func NewSceneDetectionWorkflow(deps *Collaborators, captureDir string, frameBucket string, workers int) *SceneDetectionWorkflow {
	out := &SceneDetectionWorkflow{
		BaseCommand: *cor.NewBaseCommand("scene-detection-workflow"),
		deps:        deps,
		captureDir:  captureDir,
		frameBucket: frameBucket,
		workers:     workers,
	}
	out.initializeChain()
	return out
}

func (w *SceneDetectionWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewSceneDetect("detect-scenes", w.deps.Detector, w.captureDir))
	if w.deps.Frames != nil {
		out.AddCommand(commands.NewFrameUpload("upload-frames", w.deps.Frames, w.frameBucket, w.workers))
	}
	out.AddCommand(commands.NewArtifactPersist("persist-scenes", w.deps.Artifacts, commands.GetScenesParameterName()))
	out.AddCommand(commands.NewMediaCleanup("cleanup-frames"))
	w.chain = out
}

func (w *SceneDetectionWorkflow) IsExecutable(context cor.Context) bool {
	return w.chain.IsExecutable(context)
}

func (w *SceneDetectionWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}
