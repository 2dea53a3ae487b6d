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

package services_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/render"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/services"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/store"
	"github.com/jaycherian/gcp-go-video-manual/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	config *cloud.Config
	tools  *testutil.FakeMedia
	pdf    *testutil.PDFRunner
	svc    *services.Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	config := testutil.NewConfig(t)
	tools := &testutil.FakeMedia{DurationSec: 25, Stderr: []byte("pts_time:12.0")}
	pdf := &testutil.PDFRunner{}
	deps := testutil.NewCollaborators(t, config, tools)
	return &fixture{config: config, tools: tools, pdf: pdf, svc: services.New(config, deps, nil, pdf)}
}

func (f *fixture) upload(t *testing.T) string {
	t.Helper()
	resp, err := f.svc.Videos.Save(context.Background(), "操作説明.MP4", bytes.NewReader(testutil.SampleMP4()))
	require.NoError(t, err)
	return resp.VideoID
}

func TestVideoSave(t *testing.T) {
	f := newFixture(t)
	body := testutil.SampleMP4()

	resp, err := f.svc.Videos.Save(context.Background(), "demo.mp4", bytes.NewReader(body))
	require.NoError(t, err)
	assert.NoError(t, store.ValidateID(resp.VideoID))
	assert.Equal(t, "demo.mp4", resp.Filename)
	assert.Equal(t, int64(len(body)), resp.SizeBytes)
	require.NotNil(t, resp.DurationSec)
	assert.Equal(t, 25.0, *resp.DurationSec)

	info, err := f.svc.Videos.Find(resp.VideoID)
	require.NoError(t, err)
	assert.Equal(t, "source.mp4", info.Filename)
	assert.Equal(t, filepath.Join(f.config.Storage.UploadDir, resp.VideoID, "source.mp4"), info.Path)
	assert.Equal(t, 1, f.svc.Videos.Count())
}

func TestVideoSaveDurationUnknown(t *testing.T) {
	f := newFixture(t)
	f.tools.Err = errors.New("ffprobe missing")

	resp, err := f.svc.Videos.Save(context.Background(), "demo.mov", bytes.NewReader(testutil.SampleMP4()))
	require.NoError(t, err)
	assert.Nil(t, resp.DurationSec)
}

func TestVideoSaveValidation(t *testing.T) {
	f := newFixture(t)
	f.config.Storage.MaxUploadMB = 1

	tests := []struct {
		name     string
		filename string
		body     []byte
	}{
		{"no extension", "video", testutil.SampleMP4()},
		{"unsupported extension", "notes.txt", testutil.SampleMP4()},
		{"not a video", "fake.mp4", []byte("plain text pretending to be a video")},
		{"too large", "big.mp4", append(testutil.SampleMP4(), make([]byte, 1024*1024)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Videos.Save(context.Background(), tt.filename, bytes.NewReader(tt.body))
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}
	assert.Equal(t, 0, f.svc.Videos.Count(), "rejected uploads must not be kept")
}

func TestVideoFindMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Videos.Find("does-not-exist")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.svc.Videos.Find("../etc")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestProcessTranscribeAndDetect(t *testing.T) {
	f := newFixture(t)
	videoID := f.upload(t)
	ctx := context.Background()

	resp, err := f.svc.Process.Transcribe(ctx, videoID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, resp.Status)
	assert.Equal(t, "5 セグメントを認識しました", resp.Message)
	require.NotNil(t, resp.OutputPath)

	resp, err = f.svc.Process.DetectScenes(ctx, videoID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, resp.Status)
	assert.Equal(t, "2 シーンを検出しました", resp.Message)

	tr, err := f.svc.Process.GetTranscription(ctx, videoID)
	require.NoError(t, err)
	assert.Equal(t, "source.mp4", tr.VideoFilename)
	scenes, err := f.svc.Process.GetScenes(ctx, videoID)
	require.NoError(t, err)
	assert.Len(t, scenes.Scenes, 2)
}

func TestProcessFailureIsReported(t *testing.T) {
	f := newFixture(t)
	videoID := f.upload(t)
	f.tools.Err = errors.New("ffmpeg crashed")

	resp, err := f.svc.Process.Transcribe(context.Background(), videoID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, resp.Status)
	assert.Contains(t, resp.Message, "ffmpeg crashed")
	assert.Nil(t, resp.OutputPath)
}

func TestProcessUnknownVideo(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Process.Transcribe(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestManualCreatePlanNeedsArtifacts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Manual.CreatePlan(ctx, &model.CreatePlanRequest{VideoID: "vid-1"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, f.svc.Process.Artifacts.SaveTranscription(ctx, "vid-1", testutil.SampleTranscription("demo.mp4")))
	_, err = f.svc.Manual.CreatePlan(ctx, &model.CreatePlanRequest{VideoID: "vid-1"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.svc.Manual.GetPlan(ctx, "vid-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestManualCreatePlanWithoutResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedArtifacts(t, f.svc.Manual.Artifacts, "vid-1")
	f.svc.Manual.Plan = cor.NewBaseChain("empty-plan")

	var plan *model.ManualPlan
	var err error
	require.NotPanics(t, func() {
		plan, err = f.svc.Manual.CreatePlan(ctx, &model.CreatePlanRequest{VideoID: "vid-1"})
	})
	require.Error(t, err)
	assert.Nil(t, plan)
	assert.Contains(t, err.Error(), "no plan for vid-1")
}

func TestManualPlanEditAndExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedArtifacts(t, f.svc.Process.Artifacts, "vid-1")

	plan, err := f.svc.Manual.CreatePlan(ctx, &model.CreatePlanRequest{VideoID: "vid-1"})
	require.NoError(t, err)
	assert.Equal(t, "demo.mp4 操作マニュアル", plan.Title)
	require.Len(t, plan.Steps, 2)

	plan, err = f.svc.Manual.ApplySelection(ctx, &model.CaptureSelectionRequest{
		VideoID:    "vid-1",
		Selections: map[int]bool{1: false, 7: false},
	})
	require.NoError(t, err)
	assert.True(t, plan.Steps[0].Selected)
	assert.False(t, plan.Steps[1].Selected)

	stored, err := f.svc.Manual.GetPlan(ctx, "vid-1")
	require.NoError(t, err)
	assert.False(t, stored.Steps[1].Selected)

	stored.Steps[0].Note = model.StringPtr("メニューは左上です")
	_, err = f.svc.Manual.UpdatePlan(ctx, "vid-1", stored)
	require.NoError(t, err)

	md, err := f.svc.Manual.ExportMarkdown(ctx, &model.ExportRequest{VideoID: "vid-1"})
	require.NoError(t, err)
	assert.Equal(t, model.FormatMarkdown, md.Format)
	assert.Equal(t, "/api/v1/export/download/vid-1/manual.md", md.DownloadURL)

	content, err := os.ReadFile(md.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "メニューは左上です")
	assert.NotContains(t, string(content), "日本語を選択して", "deselected steps are not exported")

	pdf, err := f.svc.Manual.ExportPDF(ctx, &model.ExportRequest{VideoID: "vid-1", Format: model.FormatPDF})
	require.NoError(t, err)
	assert.FileExists(t, pdf.OutputPath)
	require.Len(t, f.pdf.Calls, 1)
	assert.Equal(t, "pandoc", f.pdf.Calls[0][0])

	path, err := f.svc.Manual.ExportFile("vid-1", "manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, pdf.OutputPath, path)
}

func TestManualExportUnknownTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedArtifacts(t, f.svc.Process.Artifacts, "vid-1")
	_, err := f.svc.Manual.CreatePlan(ctx, &model.CreatePlanRequest{VideoID: "vid-1", Title: "t"})
	require.NoError(t, err)

	_, err = f.svc.Manual.ExportMarkdown(ctx, &model.ExportRequest{VideoID: "vid-1", Template: "missing.md.tmpl"})
	assert.ErrorIs(t, err, render.ErrTemplate)
}

func TestManualExportFileValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Manual.ExportFile("vid-1", "../../secrets")
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = f.svc.Manual.ExportFile("vid-1", "manual.md")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, f.svc.Manual.Templates(), render.DefaultTemplateName)
}

func TestMediaStepImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedArtifacts(t, f.svc.Process.Artifacts, "vid-1")
	_, err := f.svc.Manual.CreatePlan(ctx, &model.CreatePlanRequest{VideoID: "vid-1"})
	require.NoError(t, err)

	img, err := f.svc.Media.StepImage(ctx, "vid-1", 1)
	require.NoError(t, err)
	assert.Empty(t, img.URL)
	assert.True(t, strings.HasSuffix(img.LocalPath, "scene_0001_12.00s.jpg"))

	_, err = f.svc.Media.StepImage(ctx, "vid-1", 5)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMediaSignedURLNeedsStorage(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Media.GenerateSignedURL(context.Background(), "gs://frames/vid-1/frames/a.jpg", 0)
	assert.ErrorIs(t, err, services.ErrSigningDisabled)
}

func TestCatalogDisabled(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Catalog.ListPlans(context.Background(), 0)
	assert.ErrorIs(t, err, services.ErrCatalogDisabled)
}
