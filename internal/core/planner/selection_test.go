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

package planner_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/planner"
	"github.com/zeebo/assert"
)

func threeStepPlan() *model.ManualPlan {
	return &model.ManualPlan{
		Title: "demo",
		Steps: []model.ManualStep{
			{Title: "one", Start: 0, End: 5, Selected: true},
			{Title: "two", Start: 5, End: 10, Selected: true},
			{Title: "three", Start: 20, End: 25, Selected: true},
		},
	}
}

func TestApplySelection(t *testing.T) {
	plan := threeStepPlan()
	got := planner.ApplySelection(plan, map[int]bool{1: false, 2: false})

	assert.Equal(t, got, plan)
	assert.True(t, plan.Steps[0].Selected)
	assert.False(t, plan.Steps[1].Selected)
	assert.False(t, plan.Steps[2].Selected)

	planner.ApplySelection(plan, map[int]bool{2: true})
	assert.True(t, plan.Steps[2].Selected)
}

func TestApplySelectionIgnoresInvalidIndex(t *testing.T) {
	plan := threeStepPlan()
	before := threeStepPlan()

	planner.ApplySelection(plan, map[int]bool{99999: false, -1: false})
	assert.DeepEqual(t, before, plan)

	planner.ApplySelection(plan, nil)
	assert.DeepEqual(t, before, plan)
}

func TestSelectedSteps(t *testing.T) {
	plan := planner.ApplySelection(threeStepPlan(), map[int]bool{1: false})

	selected := planner.SelectedSteps(plan)
	assert.Equal(t, len(selected), 2)
	assert.Equal(t, selected[0].Title, "one")
	assert.Equal(t, selected[1].Title, "three")
	assert.Equal(t, len(plan.Steps), 3)

	none := planner.SelectedSteps(planner.ApplySelection(threeStepPlan(), map[int]bool{0: false, 1: false, 2: false}))
	assert.Equal(t, len(none), 0)
}
