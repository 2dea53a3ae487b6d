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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jaycherian/gcp-go-video-manual/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/planner"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/render"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/store"
)

// Export file names under <export dir>/<video id>/.
const (
	MarkdownFileName = "manual.md"
	PDFFileName      = "manual.pdf"
)

// DownloadPathPrefix is the route exports are downloaded from.
const DownloadPathPrefix = "/api/v1/export/download"

// ManualService creates, edits and exports manual plans.
type ManualService struct {
	Artifacts *store.ArtifactStore
	Plan      cor.Command
	Renderer  *render.MarkdownRenderer
	PDF       *render.PDFExporter
	ExportDir string
}

// CreatePlan plans videoID from its stored transcription and scenes. Both
// must exist: a missing one is reported as store.ErrNotFound before the
// planner runs.
func (s *ManualService) CreatePlan(ctx context.Context, req *model.CreatePlanRequest) (*model.ManualPlan, error) {
	if err := store.ValidateID(req.VideoID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	for _, doc := range []string{store.TranscriptionDocument, store.ScenesDocument} {
		has, err := s.Artifacts.Has(ctx, req.VideoID, doc)
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, fmt.Errorf("%w: %s for %s", store.ErrNotFound, doc, req.VideoID)
		}
	}

	chCtx := cor.NewBaseContext()
	defer chCtx.Close()
	chCtx.SetContext(ctx)
	chCtx.Add(commands.GetVideoIDParameterName(), req.VideoID)
	chCtx.Add(commands.GetPlanTitleParameterName(), req.Title)

	s.Plan.Execute(chCtx)
	plan, ok := cor.GetAs[*model.ManualPlan](chCtx, commands.GetPlanParameterName())
	if err := chCtx.Err(); err != nil {
		// The catalog row is the last step; a plan that reached the store is still returned.
		if ok && planStored(ctx, s.Artifacts, req.VideoID) {
			slog.WarnContext(ctx, "plan created with errors", "video_id", req.VideoID, "error", err)
			return plan, nil
		}
		return nil, err
	}
	if !ok || plan == nil {
		return nil, fmt.Errorf("manual plan workflow produced no plan for %s", req.VideoID)
	}
	slog.InfoContext(ctx, "manual plan created", "video_id", req.VideoID, "steps", len(plan.Steps))
	return plan, nil
}

func planStored(ctx context.Context, artifacts *store.ArtifactStore, videoID string) bool {
	has, err := artifacts.Has(ctx, videoID, store.PlanDocument)
	return err == nil && has
}

// GetPlan loads the stored plan of videoID.
func (s *ManualService) GetPlan(ctx context.Context, videoID string) (*model.ManualPlan, error) {
	return s.Artifacts.LoadPlan(ctx, videoID)
}

// UpdatePlan replaces the stored plan with an edited one.
func (s *ManualService) UpdatePlan(ctx context.Context, videoID string, plan *model.ManualPlan) (*model.ManualPlan, error) {
	if plan == nil {
		return nil, fmt.Errorf("%w: missing plan", ErrValidation)
	}
	if plan.Steps == nil {
		plan.Steps = []model.ManualStep{}
	}
	if err := s.Artifacts.SavePlan(ctx, videoID, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ApplySelection sets the selected flag of the indexed steps and stores the
// result. Indexes outside the plan are ignored.
func (s *ManualService) ApplySelection(ctx context.Context, req *model.CaptureSelectionRequest) (*model.ManualPlan, error) {
	plan, err := s.Artifacts.LoadPlan(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}
	planner.ApplySelection(plan, req.Selections)
	if err := s.Artifacts.SavePlan(ctx, req.VideoID, plan); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "capture selection applied", "video_id", req.VideoID, "changes", len(req.Selections))
	return plan, nil
}

func exportResponse(videoID, format, path string) *model.ExportResponse {
	return &model.ExportResponse{
		VideoID:     videoID,
		Format:      format,
		OutputPath:  path,
		DownloadURL: fmt.Sprintf("%s/%s/%s", DownloadPathPrefix, videoID, filepath.Base(path)),
	}
}

// ExportMarkdown renders the selected steps of the plan with the requested
// template (the default when empty).
func (s *ManualService) ExportMarkdown(ctx context.Context, req *model.ExportRequest) (*model.ExportResponse, error) {
	path, err := s.renderMarkdown(ctx, req)
	if err != nil {
		return nil, err
	}
	return exportResponse(req.VideoID, model.FormatMarkdown, path), nil
}

func (s *ManualService) renderMarkdown(ctx context.Context, req *model.ExportRequest) (string, error) {
	plan, err := s.Artifacts.LoadPlan(ctx, req.VideoID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.ExportDir, req.VideoID, MarkdownFileName)
	if _, err := s.Renderer.RenderToFile(plan, req.Template, path); err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "markdown exported", "video_id", req.VideoID, "path", path)
	return path, nil
}

// ExportPDF renders the Markdown again and converts it, so the PDF always
// reflects the current plan.
func (s *ManualService) ExportPDF(ctx context.Context, req *model.ExportRequest) (*model.ExportResponse, error) {
	mdPath, err := s.renderMarkdown(ctx, req)
	if err != nil {
		return nil, err
	}
	pdfPath := filepath.Join(s.ExportDir, req.VideoID, PDFFileName)
	if err := s.PDF.Convert(ctx, mdPath, pdfPath); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "pdf exported", "video_id", req.VideoID, "path", pdfPath)
	return exportResponse(req.VideoID, model.FormatPDF, pdfPath), nil
}

// ExportFile resolves a previously exported file.
func (s *ManualService) ExportFile(videoID, filename string) (string, error) {
	if err := store.ValidateID(videoID); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if filename == "" || filename != filepath.Base(filename) || filename == ".." {
		return "", fmt.Errorf("%w: invalid file name %q", ErrValidation, filename)
	}
	path := filepath.Join(s.ExportDir, videoID, filename)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: export %s/%s", store.ErrNotFound, videoID, filename)
	}
	return path, nil
}

// Templates lists the template names usable in ExportRequest.Template.
func (s *ManualService) Templates() []string {
	return s.Renderer.Templates()
}
