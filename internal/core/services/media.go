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

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/store"
)

// DefaultSignedURLExpiry is how long a frame URL stays valid.
const DefaultSignedURLExpiry = 15 * time.Minute

// ErrSigningDisabled is returned when a gs:// frame is requested without a
// storage client.
var ErrSigningDisabled = errors.New("cloud storage is not configured")

// StepImage locates the frame of one plan step. Exactly one of URL (a
// signed URL for gs:// frames) and LocalPath is set.
type StepImage struct {
	Locator   string `json:"locator"`
	URL       string `json:"url,omitempty"`
	LocalPath string `json:"-"`
}

// MediaService serves the frames referenced by manual plans.
type MediaService struct {
	StorageClient *storage.Client
	IAMClient     *credentials.IamCredentialsClient // signs through IAM when set
	SignerEmail   string                            // service account used with IAMClient
	Artifacts     *store.ArtifactStore
	Expiry        time.Duration
}

// StepImage resolves the frame of step index of videoID's plan.
func (s *MediaService) StepImage(ctx context.Context, videoID string, index int) (*StepImage, error) {
	plan, err := s.Artifacts.LoadPlan(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(plan.Steps) {
		return nil, fmt.Errorf("%w: step %d of %s", store.ErrNotFound, index, videoID)
	}
	image := plan.Steps[index].Image
	if image == nil || *image == "" {
		return nil, fmt.Errorf("%w: step %d of %s has no image", store.ErrNotFound, index, videoID)
	}

	out := &StepImage{Locator: *image}
	if !cloud.IsGCSURI(*image) {
		out.LocalPath = *image
		return out, nil
	}
	expiry := s.Expiry
	if expiry <= 0 {
		expiry = DefaultSignedURLExpiry
	}
	if out.URL, err = s.GenerateSignedURL(ctx, *image, expiry); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateSignedURL creates a V4 GET URL for a gs:// locator. With an IAM
// client and signer email the signature comes from IAM SignBlob, which works
// on Cloud Run where no private key is available.
func (s *MediaService) GenerateSignedURL(ctx context.Context, gcsURI string, expires time.Duration) (string, error) {
	if s.StorageClient == nil {
		return "", ErrSigningDisabled
	}
	bucketName, objectName, err := cloud.ParseGCSURI(gcsURI)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(expires),
	}
	if s.IAMClient != nil && s.SignerEmail != "" {
		opts.GoogleAccessID = s.SignerEmail
		opts.SignBytes = func(b []byte) ([]byte, error) {
			resp, err := s.IAMClient.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail),
				Payload: b,
			})
			if err != nil {
				return nil, err
			}
			return resp.SignedBlob, nil
		}
	}

	u, err := s.StorageClient.Bucket(bucketName).SignedURL(objectName, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).SignedURL(%q): %w", bucketName, objectName, err)
	}
	return u, nil
}
