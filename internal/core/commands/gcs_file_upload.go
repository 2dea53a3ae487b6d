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
	goctx "context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/media"
)

// ObjectWriter copies a local file into bucket/object.
type ObjectWriter interface {
	Upload(ctx goctx.Context, bucket, object, localPath string) error
}

// GCSObjectWriter is the Cloud Storage ObjectWriter.
type GCSObjectWriter struct {
	Client *storage.Client
}

func (w GCSObjectWriter) Upload(ctx goctx.Context, bucket, object, localPath string) error {
	dat, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer dat.Close()

	writer := w.Client.Bucket(bucket).Object(object).NewWriter(ctx)
	if mimeType, err := media.SniffVideoFile(localPath); err == nil {
		writer.ContentType = mimeType
	}
	if written, err := io.Copy(writer, dat); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to copy to GCS or partial write (%d bytes): %w", written, err)
	}
	// The object is only committed on Close.
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

// GCSFileUpload uploads the local file named by the input parameter to
// <bucket>/<video id>/<file name> and outputs its gs:// locator.
type GCSFileUpload struct {
	cor.BaseCommand
	writer ObjectWriter
	bucket string
}

func NewGCSFileUpload(name string, writer ObjectWriter, bucket string) *GCSFileUpload {
	return &GCSFileUpload{BaseCommand: *cor.NewBaseCommand(name), writer: writer, bucket: bucket}
}

func (c *GCSFileUpload) IsExecutable(context cor.Context) bool {
	_, ok := cor.GetAs[string](context, GetVideoIDParameterName())
	return ok && c.bucket != "" && c.BaseCommand.IsExecutable(context)
}

func (c *GCSFileUpload) Execute(context cor.Context) {
	localPath, _ := cor.GetAs[string](context, c.GetInputParam())
	videoID, _ := cor.GetAs[string](context, GetVideoIDParameterName())

	object := path.Join(videoID, filepath.Base(localPath))
	if err := c.writer.Upload(context.GetContext(), c.bucket, object, localPath); err != nil {
		c.Fail(context, err)
		return
	}

	uri := cloud.FormatGCSURI(c.bucket, object)
	slog.InfoContext(context.GetContext(), "uploaded file", "path", localPath, "uri", uri)
	context.Add(c.GetOutputParam(), uri)
	c.Succeed(context)
}
