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

package commands_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/planner"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/store"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/stt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const videoID = "vid-1"

func newContext(t *testing.T) cor.Context {
	t.Helper()
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(context.Background())
	chCtx.Add(commands.GetVideoIDParameterName(), videoID)
	t.Cleanup(chCtx.Close)
	return chCtx
}

type fakeAudioTool struct{ err error }

func (f fakeAudioTool) ExtractAudio(_ context.Context, _ string, outputPath string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("RIFF"), 0o644)
}

type fakeDetector struct{ times []float64 }

func (f fakeDetector) DetectScenes(_ context.Context, _ string, outputDir string) (*model.SceneDetectionResult, error) {
	out := &model.SceneDetectionResult{VideoFilename: "local.mp4"}
	for i, ts := range f.times {
		p := filepath.Join(outputDir, "frame"+string(rune('a'+i))+".jpg")
		if err := os.WriteFile(p, []byte("jpg"), 0o644); err != nil {
			return nil, err
		}
		out.Scenes = append(out.Scenes, model.SceneInfo{Time: ts, FramePath: p})
	}
	return out, nil
}

type recordingWriter struct {
	mu      sync.Mutex
	objects []string
	failOn  string
}

func (w *recordingWriter) Upload(_ context.Context, bucket, object, _ string) error {
	if object == w.failOn {
		return errors.New("upload refused")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.objects = append(w.objects, bucket+"/"+object)
	return nil
}

type failingSummarizer struct{}

func (failingSummarizer) Summarize(context.Context, string) (string, error) {
	return "", errors.New("quota")
}

type fixedSummarizer string

func (f fixedSummarizer) Summarize(context.Context, string) (string, error) {
	return string(f), nil
}

func TestVideoTriggerToGCSObject(t *testing.T) {
	chCtx := newContext(t)
	chCtx.Add(cor.CtxIn, `{"bucket":"uploads","name":"abc123/source.mp4","contentType":"video/mp4"}`)

	cmd := commands.NewVideoTriggerToGCSObject("trigger", func(ext string) bool { return ext == ".mp4" })
	require.True(t, cmd.IsExecutable(chCtx))
	cmd.Execute(chCtx)

	require.False(t, chCtx.HasErrors())
	obj, ok := cor.GetAs[*cloud.GCSObject](chCtx, cloud.GetGCSObjectName())
	require.True(t, ok)
	assert.Equal(t, "gs://uploads/abc123/source.mp4", obj.URI())
	assert.Equal(t, "abc123", chCtx.Get(commands.GetVideoIDParameterName()))
	assert.Equal(t, "source.mp4", chCtx.Get(commands.GetVideoFilenameParameterName()))
}

func TestVideoTriggerRejectsExtension(t *testing.T) {
	chCtx := newContext(t)
	chCtx.Add(cor.CtxIn, `{"bucket":"uploads","name":"notes.txt"}`)

	cmd := commands.NewVideoTriggerToGCSObject("trigger", func(ext string) bool { return ext == ".mp4" })
	cmd.Execute(chCtx)
	assert.True(t, chCtx.HasErrors())
}

func TestVideoIDFromObjectName(t *testing.T) {
	assert.Equal(t, "abc123", commands.VideoIDFromObjectName("abc123/source.mp4"))
	generated := commands.VideoIDFromObjectName("source.mp4")
	assert.NoError(t, store.ValidateID(generated))
	assert.NotEqual(t, generated, commands.VideoIDFromObjectName("source.mp4"))
}

func TestAudioExtractorAndTranscribe(t *testing.T) {
	chCtx := newContext(t)
	chCtx.Add(commands.GetVideoPathParameterName(), "/videos/demo.mp4")

	extract := commands.NewAudioExtractor("audio", fakeAudioTool{})
	require.True(t, extract.IsExecutable(chCtx))
	extract.Execute(chCtx)
	require.False(t, chCtx.HasErrors())

	audioPath, ok := cor.GetAs[string](chCtx, commands.GetAudioPathParameterName())
	require.True(t, ok)
	assert.FileExists(t, audioPath)

	transcribe := commands.NewTranscribe("stt", stt.NewDummyTranscriber())
	require.True(t, transcribe.IsExecutable(chCtx))
	transcribe.Execute(chCtx)
	require.False(t, chCtx.HasErrors())

	tr, ok := cor.GetAs[*model.Transcription](chCtx, commands.GetTranscriptionParameterName())
	require.True(t, ok)
	assert.Equal(t, "demo.mp4", tr.VideoFilename)
	assert.Len(t, tr.Segments, 5)
}

func TestAudioExtractorFailure(t *testing.T) {
	chCtx := newContext(t)
	chCtx.Add(commands.GetVideoPathParameterName(), "/videos/demo.mp4")

	commands.NewAudioExtractor("audio", fakeAudioTool{err: errors.New("no audio stream")}).Execute(chCtx)
	assert.True(t, chCtx.HasErrors())
	assert.Nil(t, chCtx.Get(commands.GetAudioPathParameterName()))
}

func TestSummarize(t *testing.T) {
	chCtx := newContext(t)
	tr := &model.Transcription{Segments: model.GetDemoSegments()}
	chCtx.Add(commands.GetTranscriptionParameterName(), tr)

	assert.False(t, commands.NewSummarize("none", nil).IsExecutable(chCtx))

	commands.NewSummarize("ok", fixedSummarizer("要約")).Execute(chCtx)
	require.NotNil(t, tr.Summary)
	assert.Equal(t, "要約", *tr.Summary)
}

func TestSummarizeFailureOnlyWarns(t *testing.T) {
	chCtx := newContext(t)
	tr := &model.Transcription{Segments: model.GetDemoSegments()}
	chCtx.Add(commands.GetTranscriptionParameterName(), tr)

	commands.NewSummarize("fail", failingSummarizer{}).Execute(chCtx)
	assert.False(t, chCtx.HasErrors())
	assert.Nil(t, tr.Summary)
}

func TestSceneDetectFrameUploadAndCleanup(t *testing.T) {
	captureDir := t.TempDir()
	chCtx := newContext(t)
	chCtx.Add(commands.GetVideoPathParameterName(), "/videos/demo.mp4")
	chCtx.Add(commands.GetVideoFilenameParameterName(), "demo.mp4")

	commands.NewSceneDetect("scenes", fakeDetector{times: []float64{0, 7.5, 15}}, captureDir).Execute(chCtx)
	require.False(t, chCtx.HasErrors())

	result, ok := cor.GetAs[*model.SceneDetectionResult](chCtx, commands.GetScenesParameterName())
	require.True(t, ok)
	assert.Equal(t, "demo.mp4", result.VideoFilename)
	require.Len(t, result.Scenes, 3)
	frameDir := filepath.Join(captureDir, videoID)
	assert.Equal(t, frameDir, chCtx.Get(commands.GetFrameDirParameterName()))

	cleanup := commands.NewMediaCleanup("cleanup")
	assert.False(t, cleanup.IsExecutable(chCtx), "local frames must be kept")

	writer := &recordingWriter{}
	upload := commands.NewFrameUpload("frames", writer, "frames-bucket", 2)
	require.True(t, upload.IsExecutable(chCtx))
	upload.Execute(chCtx)
	require.False(t, chCtx.HasErrors())

	assert.Len(t, writer.objects, 3)
	assert.Equal(t, "gs://frames-bucket/vid-1/frames/frameb.jpg", result.Scenes[1].FramePath)

	require.True(t, cleanup.IsExecutable(chCtx))
	cleanup.Execute(chCtx)
	assert.NoDirExists(t, frameDir)
}

func TestFrameUploadPartialFailure(t *testing.T) {
	chCtx := newContext(t)
	result := &model.SceneDetectionResult{Scenes: []model.SceneInfo{
		{Time: 0, FramePath: "/tmp/a.jpg"},
		{Time: 5, FramePath: "/tmp/b.jpg"},
	}}
	chCtx.Add(commands.GetScenesParameterName(), result)

	writer := &recordingWriter{failOn: "vid-1/frames/b.jpg"}
	commands.NewFrameUpload("frames", writer, "bucket", 4).Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	assert.Equal(t, "gs://bucket/vid-1/frames/a.jpg", result.Scenes[0].FramePath)
	assert.Equal(t, "/tmp/b.jpg", result.Scenes[1].FramePath)
}

func TestFrameUploadNeedsBucket(t *testing.T) {
	chCtx := newContext(t)
	chCtx.Add(commands.GetScenesParameterName(), &model.SceneDetectionResult{})
	assert.False(t, commands.NewFrameUpload("frames", &recordingWriter{}, "", 1).IsExecutable(chCtx))
}

func TestGCSFileUpload(t *testing.T) {
	chCtx := newContext(t)
	chCtx.Add(cor.CtxIn, "/data/uploads/vid-1/source.mp4")

	writer := &recordingWriter{}
	cmd := commands.NewGCSFileUpload("mirror", writer, "input-bucket")
	require.True(t, cmd.IsExecutable(chCtx))
	cmd.Execute(chCtx)

	require.False(t, chCtx.HasErrors())
	assert.Equal(t, []string{"input-bucket/vid-1/source.mp4"}, writer.objects)
	assert.Equal(t, "gs://input-bucket/vid-1/source.mp4", chCtx.Get(cor.CtxOut))
}

func TestArtifactPersistLoadAndPlan(t *testing.T) {
	artifacts := store.NewArtifactStore(store.NewFileStore(t.TempDir()))

	chCtx := newContext(t)
	chCtx.Add(commands.GetTranscriptionParameterName(), &model.Transcription{
		VideoFilename: "demo.mp4",
		Segments:      model.GetDemoSegments(),
	})
	chCtx.Add(commands.GetScenesParameterName(), &model.SceneDetectionResult{
		VideoFilename: "demo.mp4",
		Scenes:        []model.SceneInfo{{Time: 0, FramePath: "f0.jpg"}, {Time: 12, FramePath: "f1.jpg"}},
	})
	commands.NewArtifactPersist("save-t", artifacts, commands.GetTranscriptionParameterName()).Execute(chCtx)
	commands.NewArtifactPersist("save-s", artifacts, commands.GetScenesParameterName()).Execute(chCtx)
	require.False(t, chCtx.HasErrors())

	loadCtx := newContext(t)
	loadCtx.Add(commands.GetPlanTitleParameterName(), "設定マニュアル")
	commands.NewArtifactLoad("load-t", artifacts, store.TranscriptionDocument, commands.GetTranscriptionParameterName()).Execute(loadCtx)
	commands.NewArtifactLoad("load-s", artifacts, store.ScenesDocument, commands.GetScenesParameterName()).Execute(loadCtx)
	require.False(t, loadCtx.HasErrors())

	creator := commands.NewPlanCreator("plan", planner.New(planner.DefaultConfig()))
	require.True(t, creator.IsExecutable(loadCtx))
	creator.Execute(loadCtx)
	require.False(t, loadCtx.HasErrors())

	plan, ok := cor.GetAs[*model.ManualPlan](loadCtx, commands.GetPlanParameterName())
	require.True(t, ok)
	assert.Equal(t, "設定マニュアル", plan.Title)
	assert.Equal(t, "demo.mp4", plan.SourceVideo)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "f0.jpg", *plan.Steps[0].Image)

	commands.NewArtifactPersist("save-p", artifacts, commands.GetPlanParameterName()).Execute(loadCtx)
	require.False(t, loadCtx.HasErrors())
	stored, err := artifacts.LoadPlan(context.Background(), videoID)
	require.NoError(t, err)
	assert.Len(t, stored.Steps, 2)
}

func TestArtifactLoadMissing(t *testing.T) {
	artifacts := store.NewArtifactStore(store.NewFileStore(t.TempDir()))
	chCtx := newContext(t)

	commands.NewArtifactLoad("load-t", artifacts, store.TranscriptionDocument, commands.GetTranscriptionParameterName()).Execute(chCtx)
	require.True(t, chCtx.HasErrors())
	assert.ErrorIs(t, chCtx.Err(), store.ErrNotFound)
}

func TestArtifactPersistRejectsUnknownType(t *testing.T) {
	artifacts := store.NewArtifactStore(store.NewFileStore(t.TempDir()))
	chCtx := newContext(t)
	chCtx.Add(cor.CtxIn, 42)

	commands.NewArtifactPersist("save", artifacts, cor.CtxIn).Execute(chCtx)
	assert.True(t, chCtx.HasErrors())
}

func TestPlanPersistToBigQueryNeedsClient(t *testing.T) {
	chCtx := newContext(t)
	chCtx.Add(commands.GetPlanParameterName(), &model.ManualPlan{})
	assert.False(t, commands.NewPlanPersistToBigQuery("bq", nil, "ds", "plans").IsExecutable(chCtx))
}
