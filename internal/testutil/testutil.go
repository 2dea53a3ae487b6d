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

// Package testutil provides fixtures shared by the test suites: isolated
// configurations, sample artifacts, Cloud Storage notifications and fake
// media tooling that never shells out.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/scenes"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/store"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/stt"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/workflow"
)

// HandleErr fails the test when err is not nil.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// NewConfig returns the default configuration with every directory moved
// under a fresh temporary directory and all cloud features off.
func NewConfig(t *testing.T) *cloud.Config {
	t.Helper()
	root := t.TempDir()
	config := cloud.NewConfig()
	config.Storage.DataDir = root
	config.Storage.UploadDir = filepath.Join(root, "uploads")
	config.Storage.CaptureDir = filepath.Join(root, "captures")
	config.Storage.IntermediateDir = filepath.Join(root, "intermediate")
	config.Storage.ExportDir = filepath.Join(root, "exports")
	config.Storage.SQLitePath = filepath.Join(root, "artifacts.db")
	config.Export.TemplateDir = filepath.Join(root, "templates")
	config.Logging.File = ""
	return config
}

// GetTestUploadMessageText is a Cloud Storage OBJECT_FINALIZE notification
// for bucket/name.
func GetTestUploadMessageText(bucket, name string) string {
	return fmt.Sprintf(`{
  "kind": "storage#object",
  "id": "%[1]s/%[2]s/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/%[1]s/o/%[2]s",
  "name": "%[2]s",
  "bucket": "%[1]s",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "video/mp4",
  "timeCreated": "2024-10-11T03:04:08.672Z",
  "updated": "2024-10-11T03:04:08.672Z",
  "storageClass": "STANDARD",
  "size": "259348037",
  "md5Hash": "67c1rAU+1RYZzK5zp8iBkA==",
  "crc32c": "IYeSTw==",
  "etag": "CN658+yrhYkDEAE="
}`, bucket, name)
}

// SampleTranscription is the demo narration of a 25 second video.
func SampleTranscription(videoFilename string) *model.Transcription {
	segments := model.GetDemoSegments()
	return &model.Transcription{
		VideoFilename: videoFilename,
		DurationSec:   segments[len(segments)-1].End,
		Segments:      segments,
	}
}

// SampleScenes has marks at 0s and 12s, so the demo narration plans into
// two steps: [0, 10] and [10, 25].
func SampleScenes(videoFilename string) *model.SceneDetectionResult {
	return &model.SceneDetectionResult{
		VideoFilename: videoFilename,
		Scenes: []model.SceneInfo{
			{Time: 0, FramePath: "captures/scene_0000_0.00s.jpg"},
			{Time: 12, FramePath: "captures/scene_0001_12.00s.jpg"},
		},
	}
}

// SeedArtifacts stores the sample transcription and scenes for videoID.
func SeedArtifacts(t *testing.T, artifacts *store.ArtifactStore, videoID string) {
	t.Helper()
	ctx := context.Background()
	HandleErr(artifacts.SaveTranscription(ctx, videoID, SampleTranscription("demo.mp4")), t)
	HandleErr(artifacts.SaveScenes(ctx, videoID, SampleScenes("demo.mp4")), t)
}

// FakeMedia stands in for ffmpeg/ffprobe. Audio extraction and frame capture
// write small placeholder files; RunFFmpeg returns Stderr.
type FakeMedia struct {
	DurationSec float64
	Stderr      []byte
	Err         error

	mu     sync.Mutex
	Frames []string
}

func (f *FakeMedia) ExtractAudio(_ context.Context, _ string, outputPath string) error {
	if f.Err != nil {
		return f.Err
	}
	return os.WriteFile(outputPath, []byte("RIFF"), 0o644)
}

func (f *FakeMedia) Duration(context.Context, string) (float64, error) {
	return f.DurationSec, f.Err
}

func (f *FakeMedia) RunFFmpeg(context.Context, ...string) ([]byte, error) {
	return f.Stderr, f.Err
}

func (f *FakeMedia) ExtractFrame(_ context.Context, _ string, _ float64, outputPath string, _ int) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	f.Frames = append(f.Frames, outputPath)
	f.mu.Unlock()
	return os.WriteFile(outputPath, []byte("jpg"), 0o644)
}

// ObjectUpload is one call recorded by RecordingWriter.
type ObjectUpload struct {
	Bucket    string
	Object    string
	LocalPath string
}

// RecordingWriter is an in-memory commands.ObjectWriter.
type RecordingWriter struct {
	mu      sync.Mutex
	Uploads []ObjectUpload
	Err     error
}

func (w *RecordingWriter) Upload(_ context.Context, bucket, object, localPath string) error {
	if w.Err != nil {
		return w.Err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Uploads = append(w.Uploads, ObjectUpload{Bucket: bucket, Object: object, LocalPath: localPath})
	return nil
}

// NewCollaborators wires the workflows with the dummy transcriber, the real
// scene detectors over fake tooling and a file artifact store rooted in
// config.Storage.IntermediateDir.
func NewCollaborators(t *testing.T, config *cloud.Config, tools *FakeMedia) *workflow.Collaborators {
	t.Helper()
	detector, err := scenes.New(config.Scenes, tools)
	HandleErr(err, t)
	return &workflow.Collaborators{
		Prober:      tools,
		Audio:       tools,
		Transcriber: stt.NewDummyTranscriber(),
		Detector:    detector,
		Planner:     workflow.NewPlanner(config),
		Artifacts:   store.NewArtifactStore(store.NewFileStore(config.Storage.IntermediateDir)),
	}
}

// SampleMP4 is the head of an ISO base media file; enough for content
// sniffing to accept it as video/mp4.
func SampleMP4() []byte {
	return append([]byte{0x00, 0x00, 0x00, 0x18}, []byte("ftypisom\x00\x00\x02\x00isomiso2avc1mp41 padding")...)
}

// PDFRunner is a media.Runner that fakes a Markdown to PDF converter: it
// writes a placeholder to the argument following "-o".
type PDFRunner struct {
	Calls [][]string
}

func (r *PDFRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.Calls = append(r.Calls, append([]string{name}, args...))
	for i, a := range args {
		if a == "-o" && i+1 < len(args) {
			return nil, nil, os.WriteFile(args[i+1], []byte("%PDF-1.7"), 0o644)
		}
	}
	return nil, []byte("missing -o"), fmt.Errorf("exit status 1")
}
