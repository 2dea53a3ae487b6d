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

package main

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/workflow"
)

// SetupListeners attaches the ingest workflow to the upload subscription. A
// video landing in the input bucket is transcribed, scanned for scenes and
// planned without going through the HTTP API.
func SetupListeners(ctx context.Context, config *cloud.Config, cloudClients *cloud.ServiceClients, deps *workflow.Collaborators) {
	listener, ok := cloudClients.PubSubListeners[cloud.UploadTopic]
	if !ok || cloudClients.StorageClient == nil {
		slog.InfoContext(ctx, "upload listener not configured", "topic", cloud.UploadTopic)
		return
	}

	ingest := workflow.NewVideoIngestWorkflow(config, deps, cloudClients.StorageClient)
	listener.SetCommand(ingest)
	listener.Listen(ctx)
	slog.InfoContext(ctx, "listening for uploads", "topic", cloud.UploadTopic)
}
