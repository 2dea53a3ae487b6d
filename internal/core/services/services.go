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

package services

import (
	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/media"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/render"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/workflow"
)

// Services bundles every service the API serves.
type Services struct {
	Config  *cloud.Config
	Videos  *VideoService
	Process *ProcessService
	Manual  *ManualService
	Media   *MediaService
	Catalog *CatalogService
}

// New wires the services over the workflow collaborators. clients may be
// empty; cloud-backed features are then disabled. pdfRunner runs the PDF
// converter and defaults to media.ExecRunner.
func New(config *cloud.Config, deps *workflow.Collaborators, clients *cloud.ServiceClients, pdfRunner media.Runner) *Services {
	if clients == nil {
		clients = &cloud.ServiceClients{}
	}
	videos := &VideoService{Config: config, Prober: deps.Prober}
	if clients.StorageClient != nil {
		videos.Mirror = commands.GCSObjectWriter{Client: clients.StorageClient}
	}

	out := &Services{
		Config: config,
		Videos: videos,
		Process: &ProcessService{
			Videos:        videos,
			Artifacts:     deps.Artifacts,
			Transcription: workflow.NewTranscriptionWorkflow(deps),
			Scenes:        workflow.NewSceneDetectionWorkflow(deps, config.Storage.CaptureDir, config.Storage.FrameBucket, config.Application.ThreadPoolSize),
		},
		Manual: &ManualService{
			Artifacts: deps.Artifacts,
			Plan:      workflow.NewManualPlanWorkflow(deps, config.BigQueryDataSource.DatasetName, config.BigQueryDataSource.PlanTable),
			Renderer:  render.NewMarkdownRenderer(config.Export.TemplateDir, config.Export.DefaultTemplate),
			PDF:       render.NewPDFExporter(config.Export.PDFCommand, config.Export.PDFArgs, pdfRunner),
			ExportDir: config.Storage.ExportDir,
		},
		Media: &MediaService{
			StorageClient: clients.StorageClient,
			IAMClient:     clients.IAMClient,
			SignerEmail:   config.Application.SignerServiceAccountEmail,
			Artifacts:     deps.Artifacts,
			Expiry:        DefaultSignedURLExpiry,
		},
		Catalog: &CatalogService{
			DatasetName: config.BigQueryDataSource.DatasetName,
			PlanTable:   config.BigQueryDataSource.PlanTable,
		},
	}
	if deps.Catalog != nil {
		out.Catalog.BigqueryClient = deps.Catalog
	}
	return out
}
