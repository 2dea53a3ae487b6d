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

package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
)

// GCSToTempFile downloads the *cloud.GCSObject input to a temporary file,
// keeping the object's extension so ffmpeg can pick the demuxer. The file is
// removed when the chain context is closed.
type GCSToTempFile struct {
	cor.BaseCommand
	client         *storage.Client
	tempFilePrefix string
}

func NewGCSToTempFile(name string, client *storage.Client, tempFilePrefix string) *GCSToTempFile {
	out := &GCSToTempFile{
		BaseCommand:    *cor.NewBaseCommand(name),
		client:         client,
		tempFilePrefix: tempFilePrefix,
	}
	out.OutputParamName = GetVideoPathParameterName()
	return out
}

func (c *GCSToTempFile) Execute(context cor.Context) {
	msg, ok := cor.GetAs[*cloud.GCSObject](context, c.GetInputParam())
	if !ok {
		c.Fail(context, fmt.Errorf("input is not a GCS object"))
		return
	}

	reader, err := c.client.Bucket(msg.Bucket).Object(msg.Name).NewReader(context.GetContext())
	if err != nil {
		c.Fail(context, fmt.Errorf("failed to create GCS reader for %s: %w", msg.URI(), err))
		return
	}
	defer reader.Close()

	tempFile, err := os.CreateTemp("", c.tempFilePrefix+"*"+path.Ext(msg.Name))
	if err != nil {
		c.Fail(context, fmt.Errorf("could not create temp file: %w", err))
		return
	}
	context.AddTempFile(tempFile.Name())

	written, err := io.Copy(tempFile, reader)
	_ = tempFile.Close()
	if err != nil {
		c.Fail(context, fmt.Errorf("failed to copy %s after %d bytes: %w", msg.URI(), written, err))
		return
	}

	slog.InfoContext(context.GetContext(), "downloaded video", "uri", msg.URI(), "path", tempFile.Name(), "bytes", written)
	context.Add(c.GetOutputParam(), tempFile.Name())
	context.Add(cor.CtxOut, tempFile.Name())
	c.Succeed(context)
}
