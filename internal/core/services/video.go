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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/media"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/store"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/stt"
)

// SourceBaseName is the stem of every stored upload: <upload dir>/<id>/source.<ext>.
const SourceBaseName = "source"

// VideoService stores uploaded videos and finds them again by id. When
// Mirror and Storage.InputBucket are set, uploads are also copied to Cloud
// Storage.
type VideoService struct {
	Config *cloud.Config
	Prober stt.DurationProber
	Mirror commands.ObjectWriter
}

// Save validates and stores an upload. The extension must be allowed, the
// size must not exceed the configured limit and the content must sniff as
// video. The duration is nil when it cannot be probed.
func (s *VideoService) Save(ctx context.Context, filename string, body io.Reader) (*model.VideoUploadResponse, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if filename == "" || ext == "" {
		return nil, fmt.Errorf("%w: missing file name or extension", ErrValidation)
	}
	if !s.Config.IsAllowedExtension(ext) {
		return nil, fmt.Errorf("%w: unsupported format %q, allowed: %s", ErrValidation, ext, strings.Join(s.Config.Storage.AllowedExtensions, ","))
	}

	videoID := uuid.NewString()
	dir := filepath.Join(s.Config.Storage.UploadDir, videoID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	videoPath := filepath.Join(dir, SourceBaseName+"."+ext)

	size, err := writeLimited(videoPath, body, s.Config.MaxUploadBytes())
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	if _, err := media.SniffVideoFile(videoPath); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	out := &model.VideoUploadResponse{VideoID: videoID, Filename: filename, SizeBytes: size}
	if s.Prober != nil {
		if d, err := s.Prober.Duration(ctx, videoPath); err == nil {
			out.DurationSec = &d
		} else {
			slog.WarnContext(ctx, "failed to probe duration", "video_id", videoID, "error", err)
		}
	}

	s.mirror(ctx, videoID, videoPath)
	slog.InfoContext(ctx, "video uploaded", "video_id", videoID, "filename", filename, "bytes", size)
	return out, nil
}

// writeLimited copies body to path and rejects bodies larger than limit.
func writeLimited(path string, body io.Reader, limit int64) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to save video: %w", err)
	}
	defer f.Close()

	reader := body
	if limit > 0 {
		reader = io.LimitReader(body, limit+1)
	}
	n, err := io.Copy(f, reader)
	if err != nil {
		return n, fmt.Errorf("failed to save video: %w", err)
	}
	if limit > 0 && n > limit {
		return n, fmt.Errorf("%w: file too large, max %d MB", ErrValidation, limit/(1024*1024))
	}
	return n, nil
}

func (s *VideoService) mirror(ctx context.Context, videoID, videoPath string) {
	if s.Mirror == nil || s.Config.Storage.InputBucket == "" {
		return
	}
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(ctx)
	chCtx.Add(commands.GetVideoIDParameterName(), videoID)
	chCtx.Add(cor.CtxIn, videoPath)

	upload := commands.NewGCSFileUpload("mirror-upload", s.Mirror, s.Config.Storage.InputBucket)
	if upload.IsExecutable(chCtx) {
		upload.Execute(chCtx)
	}
	if err := chCtx.Err(); err != nil {
		// The local copy is authoritative; a failed mirror only costs the ingest trigger.
		slog.WarnContext(ctx, "failed to mirror upload", "video_id", videoID, "error", err)
	}
}

// Find returns the stored source video of videoID.
func (s *VideoService) Find(videoID string) (*model.VideoInfo, error) {
	if err := store.ValidateID(videoID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	matches, err := filepath.Glob(filepath.Join(s.Config.Storage.UploadDir, videoID, SourceBaseName+".*"))
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		return &model.VideoInfo{
			VideoID:   videoID,
			Filename:  filepath.Base(m),
			SizeBytes: info.Size(),
			Path:      m,
		}, nil
	}
	return nil, fmt.Errorf("%w: video %s", store.ErrNotFound, videoID)
}

// Count is the number of stored uploads.
func (s *VideoService) Count() int {
	entries, err := os.ReadDir(s.Config.Storage.UploadDir)
	if errors.Is(err, os.ErrNotExist) {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			n++
		}
	}
	return n
}
