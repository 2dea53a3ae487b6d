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

package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
)

// GCSStore keeps documents at gs://<bucket>/<prefix>/<video id>/<name>.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSStore(client *storage.Client, bucket, prefix string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket, prefix: prefix}
}

// ObjectName is the object path of a document inside the bucket.
func (g *GCSStore) ObjectName(videoID, name string) string {
	return path.Join(g.prefix, videoID, name)
}

func (g *GCSStore) Get(ctx context.Context, videoID, name string) ([]byte, error) {
	reader, err := g.client.Bucket(g.bucket).Object(g.ObjectName(videoID, name)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, videoID, name)
	}
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func (g *GCSStore) Put(ctx context.Context, videoID, name string, body []byte) error {
	writer := g.client.Bucket(g.bucket).Object(g.ObjectName(videoID, name)).NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := writer.Write(body); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write gs://%s/%s: %w", g.bucket, g.ObjectName(videoID, name), err)
	}
	return writer.Close()
}

func (g *GCSStore) Exists(ctx context.Context, videoID, name string) (bool, error) {
	_, err := g.client.Bucket(g.bucket).Object(g.ObjectName(videoID, name)).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Close is a no-op; the storage client is owned by ServiceClients.
func (g *GCSStore) Close() error {
	return nil
}
