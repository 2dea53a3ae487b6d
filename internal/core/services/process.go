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

	"github.com/jaycherian/gcp-go-video-manual/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/store"
)

// ProcessService runs the transcription and scene detection workflows on a
// stored upload. Workflow failures are reported in the response with status
// "failed"; only an unknown video is returned as an error.
type ProcessService struct {
	Videos        *VideoService
	Artifacts     *store.ArtifactStore
	Transcription cor.Command
	Scenes        cor.Command
}

func (s *ProcessService) run(ctx context.Context, videoID string, workflow cor.Command, document string) (*model.ProcessStatusResponse, cor.Context, error) {
	video, err := s.Videos.Find(videoID)
	if err != nil {
		return nil, nil, err
	}

	chCtx := cor.NewBaseContext()
	chCtx.SetContext(ctx)
	chCtx.Add(commands.GetVideoIDParameterName(), videoID)
	chCtx.Add(commands.GetVideoPathParameterName(), video.Path)
	chCtx.Add(commands.GetVideoFilenameParameterName(), video.Filename)

	workflow.Execute(chCtx)
	chCtx.Close()

	if err := chCtx.Err(); err != nil {
		slog.ErrorContext(ctx, "processing failed", "workflow", workflow.GetName(), "video_id", videoID, "error", err)
		return &model.ProcessStatusResponse{VideoID: videoID, Status: model.StatusFailed, Message: err.Error()}, chCtx, nil
	}
	return &model.ProcessStatusResponse{
		VideoID:    videoID,
		Status:     model.StatusCompleted,
		OutputPath: model.StringPtr(videoID + "/" + document),
	}, chCtx, nil
}

// Transcribe extracts, transcribes and stores the narration of videoID.
func (s *ProcessService) Transcribe(ctx context.Context, videoID string) (*model.ProcessStatusResponse, error) {
	out, chCtx, err := s.run(ctx, videoID, s.Transcription, store.TranscriptionDocument)
	if err != nil || out.Status != model.StatusCompleted {
		return out, err
	}
	t, _ := cor.GetAs[*model.Transcription](chCtx, commands.GetTranscriptionParameterName())
	out.Message = fmt.Sprintf("%d セグメントを認識しました", len(t.Segments))
	if t.Summary != nil {
		out.Message += " (要約完了)"
	}
	return out, nil
}

// DetectScenes captures the scene changes of videoID and stores them.
func (s *ProcessService) DetectScenes(ctx context.Context, videoID string) (*model.ProcessStatusResponse, error) {
	out, chCtx, err := s.run(ctx, videoID, s.Scenes, store.ScenesDocument)
	if err != nil || out.Status != model.StatusCompleted {
		return out, err
	}
	r, _ := cor.GetAs[*model.SceneDetectionResult](chCtx, commands.GetScenesParameterName())
	out.Message = fmt.Sprintf("%d シーンを検出しました", len(r.Scenes))
	return out, nil
}

func (s *ProcessService) GetTranscription(ctx context.Context, videoID string) (*model.Transcription, error) {
	return s.Artifacts.LoadTranscription(ctx, videoID)
}

func (s *ProcessService) GetScenes(ctx context.Context, videoID string) (*model.SceneDetectionResult, error) {
	return s.Artifacts.LoadScenes(ctx, videoID)
}
