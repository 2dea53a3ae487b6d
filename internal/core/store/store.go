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

// Package store persists the per-video JSON artifacts (transcription, scene
// list and manual plan). Each artifact is one document addressed by video id
// and document name. Writes replace the whole document; concurrent writers
// are last-writer-wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
)

// Document names.
const (
	TranscriptionDocument = "transcription.json"
	ScenesDocument        = "scenes.json"
	PlanDocument          = "manual_plan.json"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("artifact not found")
	// ErrInvalidID is returned for video ids that are not safe path segments.
	ErrInvalidID = errors.New("invalid video id")
)

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateID rejects ids that could escape the storage namespace.
func ValidateID(videoID string) error {
	if !validID.MatchString(videoID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, videoID)
	}
	return nil
}

// DocumentStore is a key-value backend for raw documents.
type DocumentStore interface {
	Get(ctx context.Context, videoID, name string) ([]byte, error)
	Put(ctx context.Context, videoID, name string, body []byte) error
	Exists(ctx context.Context, videoID, name string) (bool, error)
	Close() error
}

// ArtifactStore reads and writes typed artifacts on top of a DocumentStore.
type ArtifactStore struct {
	docs DocumentStore
}

func NewArtifactStore(docs DocumentStore) *ArtifactStore {
	return &ArtifactStore{docs: docs}
}

// New opens the backend selected by config.Storage.Backend.
func New(ctx context.Context, config *cloud.Config, clients *cloud.ServiceClients) (*ArtifactStore, error) {
	switch config.Storage.Backend {
	case cloud.StorageBackendFile, "":
		return NewArtifactStore(NewFileStore(config.Storage.IntermediateDir)), nil
	case cloud.StorageBackendGCS:
		if clients == nil || clients.StorageClient == nil {
			return nil, errors.New("gcs artifact store needs a storage client")
		}
		return NewArtifactStore(NewGCSStore(clients.StorageClient, config.Storage.ArtifactBucket, config.Storage.ArtifactPrefix)), nil
	case cloud.StorageBackendSQLite:
		docs, err := OpenSQLiteStore(ctx, config.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewArtifactStore(docs), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}
}

func (s *ArtifactStore) Close() error {
	return s.docs.Close()
}

// Has reports whether the named document exists for videoID.
func (s *ArtifactStore) Has(ctx context.Context, videoID, name string) (bool, error) {
	if err := ValidateID(videoID); err != nil {
		return false, err
	}
	return s.docs.Exists(ctx, videoID, name)
}

func (s *ArtifactStore) save(ctx context.Context, videoID, name string, v interface{}) error {
	if err := ValidateID(videoID); err != nil {
		return err
	}
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return s.docs.Put(ctx, videoID, name, body)
}

func (s *ArtifactStore) load(ctx context.Context, videoID, name string, v interface{}) error {
	if err := ValidateID(videoID); err != nil {
		return err
	}
	body, err := s.docs.Get(ctx, videoID, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s for %s: %w", name, videoID, err)
	}
	return nil
}

func (s *ArtifactStore) SaveTranscription(ctx context.Context, videoID string, t *model.Transcription) error {
	return s.save(ctx, videoID, TranscriptionDocument, t)
}

func (s *ArtifactStore) LoadTranscription(ctx context.Context, videoID string) (*model.Transcription, error) {
	out := &model.Transcription{}
	if err := s.load(ctx, videoID, TranscriptionDocument, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ArtifactStore) SaveScenes(ctx context.Context, videoID string, r *model.SceneDetectionResult) error {
	return s.save(ctx, videoID, ScenesDocument, r)
}

func (s *ArtifactStore) LoadScenes(ctx context.Context, videoID string) (*model.SceneDetectionResult, error) {
	out := &model.SceneDetectionResult{}
	if err := s.load(ctx, videoID, ScenesDocument, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ArtifactStore) SavePlan(ctx context.Context, videoID string, p *model.ManualPlan) error {
	return s.save(ctx, videoID, PlanDocument, p)
}

func (s *ArtifactStore) LoadPlan(ctx context.Context, videoID string) (*model.ManualPlan, error) {
	out := &model.ManualPlan{}
	if err := s.load(ctx, videoID, PlanDocument, out); err != nil {
		return nil, err
	}
	return out, nil
}
