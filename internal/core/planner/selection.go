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

package planner

import "github.com/jaycherian/gcp-go-video-manual/internal/core/model"

// ApplySelection sets the selected flag of every step whose index appears in
// selections. Indexes outside the plan are ignored. The plan is updated in
// place and returned.
func ApplySelection(plan *model.ManualPlan, selections map[int]bool) *model.ManualPlan {
	for idx, selected := range selections {
		if idx >= 0 && idx < len(plan.Steps) {
			plan.Steps[idx].Selected = selected
		}
	}
	return plan
}

// SelectedSteps returns the selected steps in plan order.
func SelectedSteps(plan *model.ManualPlan) []model.ManualStep {
	out := make([]model.ManualStep, 0, len(plan.Steps))
	for _, s := range plan.Steps {
		if s.Selected {
			out = append(out, s)
		}
	}
	return out
}
