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

package workflow_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/store"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/workflow"
	"github.com/jaycherian/gcp-go-video-manual/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const videoID = "0d6c7a3e-demo"

func newVideoContext(t *testing.T) cor.Context {
	t.Helper()
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(context.Background())
	chCtx.Add(commands.GetVideoIDParameterName(), videoID)
	chCtx.Add(commands.GetVideoPathParameterName(), "/data/uploads/"+videoID+"/source.mp4")
	chCtx.Add(commands.GetVideoFilenameParameterName(), "demo.mp4")
	t.Cleanup(chCtx.Close)
	return chCtx
}

func TestTranscriptionWorkflow(t *testing.T) {
	config := testutil.NewConfig(t)
	deps := testutil.NewCollaborators(t, config, &testutil.FakeMedia{})

	chCtx := newVideoContext(t)
	workflow.NewTranscriptionWorkflow(deps).Execute(chCtx)
	require.NoError(t, chCtx.Err())

	stored, err := deps.Artifacts.LoadTranscription(context.Background(), videoID)
	require.NoError(t, err)
	assert.Equal(t, "demo.mp4", stored.VideoFilename)
	assert.Len(t, stored.Segments, 5)
	assert.Nil(t, stored.Summary)
}

func TestTranscriptionWorkflowStopsOnAudioFailure(t *testing.T) {
	config := testutil.NewConfig(t)
	deps := testutil.NewCollaborators(t, config, &testutil.FakeMedia{Err: errors.New("no audio stream")})

	chCtx := newVideoContext(t)
	workflow.NewTranscriptionWorkflow(deps).Execute(chCtx)
	require.Error(t, chCtx.Err())

	has, err := deps.Artifacts.Has(context.Background(), videoID, store.TranscriptionDocument)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSceneDetectionWorkflowKeepsLocalFrames(t *testing.T) {
	config := testutil.NewConfig(t)
	tools := &testutil.FakeMedia{Stderr: []byte("[Parsed_showinfo_1] n:0 pts:360 pts_time:12.0 duration:1")}
	deps := testutil.NewCollaborators(t, config, tools)

	chCtx := newVideoContext(t)
	workflow.NewSceneDetectionWorkflow(deps, config.Storage.CaptureDir, "", 2).Execute(chCtx)
	require.NoError(t, chCtx.Err())

	result, err := deps.Artifacts.LoadScenes(context.Background(), videoID)
	require.NoError(t, err)
	require.Len(t, result.Scenes, 2)
	assert.Equal(t, 12.0, result.Scenes[1].Time)
	assert.FileExists(t, result.Scenes[1].FramePath)
	assert.Equal(t, filepath.Join(config.Storage.CaptureDir, videoID), filepath.Dir(result.Scenes[0].FramePath))
}

func TestSceneDetectionWorkflowUploadsFrames(t *testing.T) {
	config := testutil.NewConfig(t)
	tools := &testutil.FakeMedia{Stderr: []byte("pts_time:12.0")}
	deps := testutil.NewCollaborators(t, config, tools)
	writer := &testutil.RecordingWriter{}
	deps.Frames = writer

	chCtx := newVideoContext(t)
	workflow.NewSceneDetectionWorkflow(deps, config.Storage.CaptureDir, "frames", 2).Execute(chCtx)
	require.NoError(t, chCtx.Err())

	result, err := deps.Artifacts.LoadScenes(context.Background(), videoID)
	require.NoError(t, err)
	assert.Len(t, writer.Uploads, 2)
	for _, s := range result.Scenes {
		assert.True(t, cloud.IsGCSURI(s.FramePath), s.FramePath)
	}
	assert.NoDirExists(t, filepath.Join(config.Storage.CaptureDir, videoID))
}

func TestManualPlanWorkflow(t *testing.T) {
	config := testutil.NewConfig(t)
	deps := testutil.NewCollaborators(t, config, &testutil.FakeMedia{})
	testutil.SeedArtifacts(t, deps.Artifacts, videoID)

	chCtx := newVideoContext(t)
	chCtx.Add(commands.GetPlanTitleParameterName(), "言語設定の変更")
	workflow.NewManualPlanWorkflow(deps, "", "").Execute(chCtx)
	require.NoError(t, chCtx.Err())

	plan, err := deps.Artifacts.LoadPlan(context.Background(), videoID)
	require.NoError(t, err)
	assert.Equal(t, "言語設定の変更", plan.Title)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, 0.0, plan.Steps[0].Start)
	assert.Equal(t, 10.0, plan.Steps[0].End)
	assert.Equal(t, 25.0, plan.Steps[1].End)
}

func TestManualPlanWorkflowMissingScenes(t *testing.T) {
	config := testutil.NewConfig(t)
	deps := testutil.NewCollaborators(t, config, &testutil.FakeMedia{})
	require.NoError(t, deps.Artifacts.SaveTranscription(context.Background(), videoID, testutil.SampleTranscription("demo.mp4")))

	chCtx := newVideoContext(t)
	workflow.NewManualPlanWorkflow(deps, "", "").Execute(chCtx)

	assert.ErrorIs(t, chCtx.Err(), store.ErrNotFound)
	assert.Nil(t, chCtx.Get(commands.GetPlanParameterName()))
}

func TestVideoIngestWorkflowRejectsUnsupportedObject(t *testing.T) {
	config := testutil.NewConfig(t)
	deps := testutil.NewCollaborators(t, config, &testutil.FakeMedia{})

	chCtx := cor.NewBaseContext()
	chCtx.SetContext(context.Background())
	chCtx.Add(cor.CtxIn, testutil.GetTestUploadMessageText("uploads", "notes/readme.txt"))
	defer chCtx.Close()

	workflow.NewVideoIngestWorkflow(config, deps, nil).Execute(chCtx)
	require.Error(t, chCtx.Err())
	assert.Nil(t, chCtx.Get(commands.GetVideoPathParameterName()))
}

func TestNewPlannerUsesManualConfig(t *testing.T) {
	config := cloud.NewConfig()
	config.Manual.AutoMergeThresholdSec = 1.5
	p := workflow.NewPlanner(config)
	assert.Equal(t, 1.5, p.Config().AutoMergeGap)
	assert.Equal(t, 3.0, p.Config().MinStepDuration)
}
