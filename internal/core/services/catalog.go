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
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/store"
	"google.golang.org/api/iterator"
)

// DefaultCatalogLimit is used when a listing asks for no explicit limit.
const DefaultCatalogLimit = 20

// ErrCatalogDisabled is returned when no BigQuery client is configured.
var ErrCatalogDisabled = errors.New("plan catalog is disabled")

// CatalogService reads the plan catalog written by the planning workflows.
type CatalogService struct {
	BigqueryClient *bigquery.Client
	DatasetName    string
	PlanTable      string
}

// GetFQN returns the fully-qualified table name usable in standard SQL.
func (s *CatalogService) GetFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.PlanTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// ListPlans returns the most recent catalog rows, newest first, without steps.
func (s *CatalogService) ListPlans(ctx context.Context, limit int) ([]*model.PlanRecord, error) {
	if s.BigqueryClient == nil {
		return nil, ErrCatalogDisabled
	}
	if limit <= 0 {
		limit = DefaultCatalogLimit
	}
	q := s.BigqueryClient.Query(fmt.Sprintf(QryRecentPlans, s.GetFQN(), limit))
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read from BigQuery: %w", err)
	}
	out := make([]*model.PlanRecord, 0)
	for {
		r := &model.PlanRecord{}
		err := itr.Next(r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("failed to iterate results: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// GetPlan returns the newest catalog row of videoID.
func (s *CatalogService) GetPlan(ctx context.Context, videoID string) (*model.PlanRecord, error) {
	if s.BigqueryClient == nil {
		return nil, ErrCatalogDisabled
	}
	q := s.BigqueryClient.Query(fmt.Sprintf(QryPlanByVideoID, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "video_id", Value: videoID}}
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read from BigQuery: %w", err)
	}
	out := &model.PlanRecord{}
	if err := itr.Next(out); errors.Is(err, iterator.Done) {
		return nil, fmt.Errorf("%w: catalog row for %s", store.ErrNotFound, videoID)
	} else if err != nil {
		return nil, err
	}
	return out, nil
}
