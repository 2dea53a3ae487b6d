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

package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]*store.ArtifactStore {
	t.Helper()
	sqlite, err := store.OpenSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "db", "artifacts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]*store.ArtifactStore{
		"file":   store.NewArtifactStore(store.NewFileStore(t.TempDir())),
		"sqlite": store.NewArtifactStore(sqlite),
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			tr := &model.Transcription{VideoFilename: "demo.mp4", DurationSec: 25, Segments: model.GetDemoSegments()}
			require.NoError(t, s.SaveTranscription(ctx, "vid-1", tr))

			loaded, err := s.LoadTranscription(ctx, "vid-1")
			require.NoError(t, err)
			assert.Equal(t, tr, loaded)

			sc := &model.SceneDetectionResult{VideoFilename: "demo.mp4", Scenes: []model.SceneInfo{{Time: 0, FramePath: "a.jpg"}}}
			require.NoError(t, s.SaveScenes(ctx, "vid-1", sc))
			loadedScenes, err := s.LoadScenes(ctx, "vid-1")
			require.NoError(t, err)
			assert.Equal(t, sc, loadedScenes)

			plan := &model.ManualPlan{Title: "t", SourceVideo: "demo.mp4", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
				Steps: []model.ManualStep{{Title: "a", Narration: "a", Start: 0, End: 5, Selected: true}}}
			require.NoError(t, s.SavePlan(ctx, "vid-1", plan))
			plan.Steps[0].Selected = false
			require.NoError(t, s.SavePlan(ctx, "vid-1", plan))

			loadedPlan, err := s.LoadPlan(ctx, "vid-1")
			require.NoError(t, err)
			assert.False(t, loadedPlan.Steps[0].Selected)
			assert.True(t, plan.CreatedAt.Equal(loadedPlan.CreatedAt))
		})
	}
}

func TestArtifactNotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.LoadPlan(ctx, "nope")
			assert.ErrorIs(t, err, store.ErrNotFound)

			ok, err := s.Has(ctx, "nope", store.ScenesDocument)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestArtifactInvalidID(t *testing.T) {
	s := store.NewArtifactStore(store.NewFileStore(t.TempDir()))
	for _, id := range []string{"", "../etc", "a/b", ".hidden"} {
		_, err := s.LoadTranscription(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrInvalidID, id)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	config := cloud.NewConfig()
	config.Storage.IntermediateDir = t.TempDir()
	s, err := store.New(context.Background(), config, &cloud.ServiceClients{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	config.Storage.Backend = cloud.StorageBackendGCS
	_, err = store.New(context.Background(), config, &cloud.ServiceClients{})
	assert.Error(t, err)
}
