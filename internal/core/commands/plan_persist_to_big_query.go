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
	"log/slog"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
)

// PlanPersistToBigQuery appends a catalog row for the plan in the context.
type PlanPersistToBigQuery struct {
	cor.BaseCommand
	client  *bigquery.Client
	dataset string
	table   string
}

func NewPlanPersistToBigQuery(name string, client *bigquery.Client, dataset string, table string) *PlanPersistToBigQuery {
	out := &PlanPersistToBigQuery{BaseCommand: *cor.NewBaseCommand(name), client: client, dataset: dataset, table: table}
	out.InputParamName = GetPlanParameterName()
	return out
}

func (s *PlanPersistToBigQuery) IsExecutable(context cor.Context) bool {
	_, ok := cor.GetAs[string](context, GetVideoIDParameterName())
	return ok && s.client != nil && s.BaseCommand.IsExecutable(context)
}

func (s *PlanPersistToBigQuery) Execute(context cor.Context) {
	plan, ok := cor.GetAs[*model.ManualPlan](context, s.GetInputParam())
	if !ok {
		s.Fail(context, fmt.Errorf("input is not a manual plan"))
		return
	}
	videoID, _ := cor.GetAs[string](context, GetVideoIDParameterName())

	record := model.NewPlanRecord(videoID, plan)
	i := s.client.Dataset(s.dataset).Table(s.table).Inserter()
	if err := i.Put(context.GetContext(), record); err != nil {
		s.Fail(context, fmt.Errorf("bigquery insert failed for plan %s: %w", videoID, err))
		return
	}

	slog.InfoContext(context.GetContext(), "persisted plan to catalog", "video_id", videoID, "steps", record.StepCount)
	s.Succeed(context)
}
