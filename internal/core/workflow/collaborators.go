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

// Package workflow assembles the commands into the chains that turn a video
// into a manual: transcription, scene detection, planning and the end-to-end
// ingest triggered by Cloud Storage uploads.
package workflow

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/media"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/planner"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/scenes"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/store"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/stt"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/summarizer"
)

// Collaborators are the engines and stores the workflows are built from.
// Frames and Catalog are optional: a nil value drops the matching step.
type Collaborators struct {
	Prober      stt.DurationProber
	Audio       commands.AudioTool
	Transcriber stt.Transcriber
	Summarizer  summarizer.Summarizer
	Detector    scenes.Detector
	Planner     *planner.Planner
	Artifacts   *store.ArtifactStore
	Frames      commands.ObjectWriter
	Catalog     *bigquery.Client
}

// NewPlanner builds the planner from the manual section of the config.
func NewPlanner(config *cloud.Config) *planner.Planner {
	return planner.New(planner.Config{
		AutoMergeGap:    config.Manual.AutoMergeThresholdSec,
		MinStepDuration: config.Manual.MinStepDurationSec,
	})
}

// NewCollaborators wires every engine selected by config.
func NewCollaborators(ctx context.Context, config *cloud.Config, clients *cloud.ServiceClients) (*Collaborators, error) {
	ff := media.NewFFmpeg(config.Media, media.ExecRunner{})

	transcriber, err := stt.New(config, clients, ff)
	if err != nil {
		return nil, err
	}
	summary, err := summarizer.New(config, clients)
	if err != nil {
		return nil, err
	}
	detector, err := scenes.New(config.Scenes, ff)
	if err != nil {
		return nil, err
	}
	artifacts, err := store.New(ctx, config, clients)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact store: %w", err)
	}

	out := &Collaborators{
		Prober:      ff,
		Audio:       ff,
		Transcriber: transcriber,
		Summarizer:  summary,
		Detector:    detector,
		Planner:     NewPlanner(config),
		Artifacts:   artifacts,
	}
	if clients.StorageClient != nil && config.Storage.FrameBucket != "" {
		out.Frames = commands.GCSObjectWriter{Client: clients.StorageClient}
	}
	if config.BigQueryDataSource.Enabled && clients.BiqQueryClient != nil {
		out.Catalog = clients.BiqQueryClient
	}
	return out, nil
}
