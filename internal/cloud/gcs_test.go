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

package cloud_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/zeebo/assert"
)

func TestParseGCSURI(t *testing.T) {
	bucket, object, err := cloud.ParseGCSURI("gs://frames/abc/scene_0001_5.00s.jpg")
	assert.NoError(t, err)
	assert.Equal(t, bucket, "frames")
	assert.Equal(t, object, "abc/scene_0001_5.00s.jpg")

	for _, bad := range []string{"https://example.com/a.jpg", "gs://bucket-only", "gs:///object", "/tmp/a.jpg"} {
		_, _, err := cloud.ParseGCSURI(bad)
		assert.Error(t, err)
	}
}

func TestFormatGCSURI(t *testing.T) {
	assert.Equal(t, cloud.FormatGCSURI("b", "/x/y.json"), "gs://b/x/y.json")
	obj := &cloud.GCSObject{Bucket: "b", Name: "v.mp4"}
	assert.Equal(t, obj.URI(), "gs://b/v.mp4")
	assert.True(t, cloud.IsGCSURI(obj.URI()))
	assert.False(t, cloud.IsGCSURI("./data/captures/x.jpg"))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, cloud.StripCodeFence("```json\n{\"a\":1}\n```"), "{\"a\":1}")
	assert.Equal(t, cloud.StripCodeFence("  plain  "), "plain")
}
