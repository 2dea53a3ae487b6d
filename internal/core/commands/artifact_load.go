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
	"github.com/jaycherian/gcp-go-video-manual/internal/core/store"
)

// ArtifactLoad reads one stored document for the current video id into the
// context. A missing document fails the chain with store.ErrNotFound.
type ArtifactLoad struct {
	cor.BaseCommand
	store    *store.ArtifactStore
	document string
}

// NewArtifactLoad loads document (store.TranscriptionDocument,
// store.ScenesDocument or store.PlanDocument) into outputParam.
func NewArtifactLoad(name string, artifacts *store.ArtifactStore, document string, outputParam string) *ArtifactLoad {
	out := &ArtifactLoad{BaseCommand: *cor.NewBaseCommand(name), store: artifacts, document: document}
	out.InputParamName = GetVideoIDParameterName()
	out.OutputParamName = outputParam
	return out
}

func (c *ArtifactLoad) Execute(context cor.Context) {
	videoID, _ := cor.GetAs[string](context, c.GetInputParam())
	ctx := context.GetContext()

	var (
		value interface{}
		err   error
	)
	switch c.document {
	case store.TranscriptionDocument:
		value, err = c.store.LoadTranscription(ctx, videoID)
	case store.ScenesDocument:
		value, err = c.store.LoadScenes(ctx, videoID)
	case store.PlanDocument:
		value, err = c.store.LoadPlan(ctx, videoID)
	default:
		err = fmt.Errorf("unknown document %q", c.document)
	}
	if err != nil {
		c.Fail(context, fmt.Errorf("failed to load %s for %s: %w", c.document, videoID, err))
		return
	}

	context.Add(c.GetOutputParam(), value)
	c.Succeed(context)
}
