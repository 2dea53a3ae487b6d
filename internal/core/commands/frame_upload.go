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
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
)

// FrameUpload copies every captured frame to Cloud Storage with a pool of
// workers and rewrites each scene's frame path to its gs:// locator. Scenes
// whose upload fails keep their local path and the error is recorded.
type FrameUpload struct {
	cor.BaseCommand
	writer          ObjectWriter
	bucket          string
	numberOfWorkers int
}

func NewFrameUpload(name string, writer ObjectWriter, bucket string, numberOfWorkers int) *FrameUpload {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	out := &FrameUpload{
		BaseCommand:     *cor.NewBaseCommand(name),
		writer:          writer,
		bucket:          bucket,
		numberOfWorkers: numberOfWorkers,
	}
	out.InputParamName = GetScenesParameterName()
	out.OutputParamName = GetScenesParameterName()
	return out
}

func (c *FrameUpload) IsExecutable(context cor.Context) bool {
	_, ok := cor.GetAs[string](context, GetVideoIDParameterName())
	return ok && c.bucket != "" && c.BaseCommand.IsExecutable(context)
}

// FrameObjectName is the object a frame is uploaded to.
func FrameObjectName(videoID, framePath string) string {
	return path.Join(videoID, "frames", filepath.Base(framePath))
}

type frameJob struct {
	ctx    goctx.Context
	tracer trace.Tracer
	writer ObjectWriter
	bucket string
	object string
	index  int
	path   string
}

type frameResult struct {
	index int
	uri   string
	err   error
}

func frameWorker(jobs <-chan *frameJob, results chan<- *frameResult, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range jobs {
		ctx, span := j.tracer.Start(j.ctx, "frame_upload")
		span.SetAttributes(attribute.Int("index", j.index), attribute.String("object", j.object))
		err := j.writer.Upload(ctx, j.bucket, j.object, j.path)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			results <- &frameResult{index: j.index, err: fmt.Errorf("frame %d: %w", j.index, err)}
		} else {
			results <- &frameResult{index: j.index, uri: cloud.FormatGCSURI(j.bucket, j.object)}
		}
		span.End()
	}
}

func (c *FrameUpload) Execute(context cor.Context) {
	result, ok := cor.GetAs[*model.SceneDetectionResult](context, c.GetInputParam())
	if !ok {
		c.Fail(context, fmt.Errorf("input is not a scene detection result"))
		return
	}
	videoID, _ := cor.GetAs[string](context, GetVideoIDParameterName())

	var wg sync.WaitGroup
	jobs := make(chan *frameJob, len(result.Scenes))
	results := make(chan *frameResult, len(result.Scenes))

	for w := 0; w < c.numberOfWorkers; w++ {
		wg.Add(1)
		go frameWorker(jobs, results, &wg)
	}
	for i, s := range result.Scenes {
		if s.FramePath == "" || cloud.IsGCSURI(s.FramePath) {
			continue
		}
		jobs <- &frameJob{
			ctx:    context.GetContext(),
			tracer: c.Tracer,
			writer: c.writer,
			bucket: c.bucket,
			object: FrameObjectName(videoID, s.FramePath),
			index:  i,
			path:   s.FramePath,
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	var errs []error
	for r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		result.Scenes[r.index].FramePath = r.uri
	}

	context.Add(c.GetOutputParam(), result)
	context.Add(cor.CtxOut, result)
	if len(errs) > 0 {
		c.Fail(context, errors.Join(errs...))
		return
	}
	c.Succeed(context)
}
