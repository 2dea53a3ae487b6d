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
	"os"
	"path/filepath"
)

// FileStore keeps documents under <root>/<video id>/<name>.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (f *FileStore) path(videoID, name string) string {
	return filepath.Join(f.root, videoID, name)
}

func (f *FileStore) Get(_ context.Context, videoID, name string) ([]byte, error) {
	body, err := os.ReadFile(f.path(videoID, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, videoID, name)
	}
	return body, err
}

// Put writes through a temporary file and a rename so readers never see a
// partial document.
func (f *FileStore) Put(_ context.Context, videoID, name string, body []byte) error {
	dir := filepath.Join(f.root, videoID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(videoID, name))
}

func (f *FileStore) Exists(_ context.Context, videoID, name string) (bool, error) {
	_, err := os.Stat(f.path(videoID, name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (f *FileStore) Close() error {
	return nil
}
