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

	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/store"
)

// ArtifactPersist saves the artifact held in its input parameter under the
// current video id. The document kind follows the value's type.
type ArtifactPersist struct {
	cor.BaseCommand
	store *store.ArtifactStore
}

func NewArtifactPersist(name string, artifacts *store.ArtifactStore, inputParam string) *ArtifactPersist {
	out := &ArtifactPersist{BaseCommand: *cor.NewBaseCommand(name), store: artifacts}
	out.InputParamName = inputParam
	return out
}

func (c *ArtifactPersist) IsExecutable(context cor.Context) bool {
	_, ok := cor.GetAs[string](context, GetVideoIDParameterName())
	return ok && c.BaseCommand.IsExecutable(context)
}

func (c *ArtifactPersist) Execute(context cor.Context) {
	videoID, _ := cor.GetAs[string](context, GetVideoIDParameterName())
	ctx := context.GetContext()

	var err error
	switch v := context.Get(c.GetInputParam()).(type) {
	case *model.Transcription:
		err = c.store.SaveTranscription(ctx, videoID, v)
	case *model.SceneDetectionResult:
		err = c.store.SaveScenes(ctx, videoID, v)
	case *model.ManualPlan:
		err = c.store.SavePlan(ctx, videoID, v)
	default:
		err = fmt.Errorf("cannot persist %T", v)
	}
	if err != nil {
		c.Fail(context, fmt.Errorf("failed to persist artifact for %s: %w", videoID, err))
		return
	}
	c.Succeed(context)
}
