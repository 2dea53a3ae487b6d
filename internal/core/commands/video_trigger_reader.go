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
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/store"
)

// VideoTriggerToGCSObject turns a Cloud Storage notification (JSON string
// input) into a *cloud.GCSObject. Objects uploaded as <video id>/<file> keep
// that id; any other object gets a fresh one.
type VideoTriggerToGCSObject struct {
	cor.BaseCommand
	allowed func(ext string) bool
}

func NewVideoTriggerToGCSObject(name string, allowed func(ext string) bool) *VideoTriggerToGCSObject {
	return &VideoTriggerToGCSObject{BaseCommand: *cor.NewBaseCommand(name), allowed: allowed}
}

// VideoIDFromObjectName derives the video id from an object name.
func VideoIDFromObjectName(name string) string {
	if dir, _, found := strings.Cut(name, "/"); found && store.ValidateID(dir) == nil {
		return dir
	}
	return uuid.NewString()
}

func (c *VideoTriggerToGCSObject) Execute(context cor.Context) {
	in, _ := cor.GetAs[string](context, c.GetInputParam())

	var notification cloud.GCSPubSubNotification
	if err := json.Unmarshal([]byte(in), &notification); err != nil {
		c.Fail(context, fmt.Errorf("failed to unmarshal GCS notification: %w", err))
		return
	}
	if notification.Bucket == "" || notification.Name == "" {
		c.Fail(context, fmt.Errorf("GCS notification is missing bucket or object name"))
		return
	}
	if c.allowed != nil && !c.allowed(path.Ext(notification.Name)) {
		c.Fail(context, fmt.Errorf("unsupported video extension for %s", notification.Name))
		return
	}

	obj := &cloud.GCSObject{Bucket: notification.Bucket, Name: notification.Name, MIMEType: notification.ContentType}
	context.Add(cloud.GetGCSObjectName(), obj)
	context.Add(GetVideoIDParameterName(), VideoIDFromObjectName(notification.Name))
	context.Add(GetVideoFilenameParameterName(), path.Base(notification.Name))
	context.Add(c.GetOutputParam(), obj)
	c.Succeed(context)
}
