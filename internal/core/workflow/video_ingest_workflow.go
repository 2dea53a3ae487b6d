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
	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
)

// VideoIngestWorkflow processes a video end to end from a Cloud Storage
// notification: download, transcription, scene detection and planning. It
// is run by the Pub/Sub listener on the upload topic.
type VideoIngestWorkflow struct {
	cor.BaseCommand
	config        *cloud.Config
	deps          *Collaborators
	storageClient *storage.Client
	chain         cor.Chain
}

func NewVideoIngestWorkflow(config *cloud.Config, deps *Collaborators, storageClient *storage.Client) *VideoIngestWorkflow {
	out := &VideoIngestWorkflow{
		BaseCommand:   *cor.NewBaseCommand("video-ingest-workflow"),
		config:        config,
		deps:          deps,
		storageClient: storageClient,
	}
	out.initializeChain()
	return out
}

func (w *VideoIngestWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewVideoTriggerToGCSObject("video-trigger-to-gcs-object", w.config.IsAllowedExtension))
	out.AddCommand(commands.NewGCSToTempFile("gcs-to-temp-file", w.storageClient, "video-ingest-"))
	out.AddCommand(NewTranscriptionWorkflow(w.deps))
	out.AddCommand(NewSceneDetectionWorkflow(w.deps, w.config.Storage.CaptureDir, w.config.Storage.FrameBucket, w.config.Application.ThreadPoolSize))
	for _, c := range planCommands(w.deps, w.config.BigQueryDataSource.DatasetName, w.config.BigQueryDataSource.PlanTable) {
		out.AddCommand(c)
	}
	w.chain = out
}

func (w *VideoIngestWorkflow) IsExecutable(context cor.Context) bool {
	return w.chain.IsExecutable(context)
}

func (w *VideoIngestWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}
