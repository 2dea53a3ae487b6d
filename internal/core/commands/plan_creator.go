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
	"log/slog"

	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/planner"
)

// PlanCreator merges the transcription and scene marks in the context into a
// *model.ManualPlan.
type PlanCreator struct {
	cor.BaseCommand
	planner *planner.Planner
}

func NewPlanCreator(name string, p *planner.Planner) *PlanCreator {
	out := &PlanCreator{BaseCommand: *cor.NewBaseCommand(name), planner: p}
	out.InputParamName = GetTranscriptionParameterName()
	out.OutputParamName = GetPlanParameterName()
	return out
}

func (c *PlanCreator) Execute(context cor.Context) {
	transcription, ok := cor.GetAs[*model.Transcription](context, c.GetInputParam())
	if !ok {
		c.Fail(context, errNotTranscription)
		return
	}
	sceneResult, _ := cor.GetAs[*model.SceneDetectionResult](context, GetScenesParameterName())
	title, _ := cor.GetAs[string](context, GetPlanTitleParameterName())

	plan := c.planner.CreatePlan(transcription, sceneResult, title)
	slog.InfoContext(context.GetContext(), "manual plan created", "title", plan.Title, "steps", len(plan.Steps))

	context.Add(c.GetOutputParam(), plan)
	context.Add(cor.CtxOut, plan)
	c.Succeed(context)
}
