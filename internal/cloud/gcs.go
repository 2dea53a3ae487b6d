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

package cloud

import (
	"fmt"
	"net/url"
	"strings"
)

// GCSScheme prefixes Cloud Storage locators.
const GCSScheme = "gs://"

// GetGCSObjectName is the context key under which a parsed *GCSObject travels
// through a chain.
func GetGCSObjectName() string {
	return "__GCS__OBJ__"
}

// GCSPubSubNotification is the JSON payload of a Cloud Storage
// OBJECT_FINALIZE notification delivered through Pub/Sub.
type GCSPubSubNotification struct {
	Kind                    string                 `json:"kind"`
	ID                      string                 `json:"id"`
	SelfLink                string                 `json:"selfLink"`
	Name                    string                 `json:"name"`
	Bucket                  string                 `json:"bucket"`
	Generation              string                 `json:"generation"`
	MetaGeneration          string                 `json:"metageneration"`
	ContentType             string                 `json:"contentType"`
	TimeCreated             string                 `json:"timeCreated"`
	Updated                 string                 `json:"updated"`
	StorageClass            string                 `json:"storageClass"`
	TimeStorageClassUpdated string                 `json:"timeStorageClassUpdated"`
	Size                    string                 `json:"size"`
	MD5Hash                 string                 `json:"md5Hash"`
	MediaLink               string                 `json:"mediaLink"`
	MetaData                map[string]interface{} `json:"metadata"`
	Crc32c                  string                 `json:"crc32c"`
	ETag                    string                 `json:"etag"`
}

// GCSObject identifies one object in Cloud Storage.
type GCSObject struct {
	Bucket   string
	Name     string
	MIMEType string
}

// URI returns the gs:// locator of the object.
func (o *GCSObject) URI() string {
	return FormatGCSURI(o.Bucket, o.Name)
}

// FormatGCSURI builds gs://bucket/object.
func FormatGCSURI(bucket, object string) string {
	return GCSScheme + bucket + "/" + strings.TrimPrefix(object, "/")
}

// IsGCSURI reports whether locator is a gs:// URI.
func IsGCSURI(locator string) bool {
	return strings.HasPrefix(locator, GCSScheme)
}

// ParseGCSURI splits gs://bucket/object into its parts.
func ParseGCSURI(uri string) (bucket string, object string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("invalid gcs uri %q: %w", uri, err)
	}
	if u.Scheme != "gs" || u.Host == "" {
		return "", "", fmt.Errorf("invalid gcs uri %q: expected gs://bucket/object", uri)
	}
	object = strings.TrimPrefix(u.Path, "/")
	if object == "" {
		return "", "", fmt.Errorf("invalid gcs uri %q: missing object name", uri)
	}
	return u.Host, object, nil
}
