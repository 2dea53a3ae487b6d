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

package workflow

import (
	"github.com/jaycherian/gcp-go-video-manual/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/store"
)

// ManualPlanWorkflow builds a plan from stored artifacts. Both the
// transcription and the scene result must exist; the planner never runs
// otherwise and the context carries store.ErrNotFound.
type ManualPlanWorkflow struct {
	cor.BaseCommand
	deps    *Collaborators
	dataset string
	table   string
	chain   cor.Chain
}

func NewManualPlanWorkflow(deps *Collaborators, dataset string, table string) *ManualPlanWorkflow {
	out := &ManualPlanWorkflow{
		BaseCommand: *cor.NewBaseCommand("manual-plan-workflow"),
		deps:        deps,
		dataset:     dataset,
		table:       table,
	}
	out.initializeChain()
	return out
}

func (w *ManualPlanWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewArtifactLoad("load-transcription", w.deps.Artifacts, store.TranscriptionDocument, commands.GetTranscriptionParameterName()))
	out.AddCommand(commands.NewArtifactLoad("load-scenes", w.deps.Artifacts, store.ScenesDocument, commands.GetScenesParameterName()))
	for _, c := range planCommands(w.deps, w.dataset, w.table) {
		out.AddCommand(c)
	}
	w.chain = out
}

// planCommands create, store and catalog a plan from the artifacts already
// in the context.
func planCommands(deps *Collaborators, dataset, table string) []cor.Command {
	out := []cor.Command{
		commands.NewPlanCreator("create-plan", deps.Planner),
		commands.NewArtifactPersist("persist-plan", deps.Artifacts, commands.GetPlanParameterName()),
	}
	if deps.Catalog != nil {
		out = append(out, commands.NewPlanPersistToBigQuery("write-to-bigquery", deps.Catalog, dataset, table))
	}
	return out
}

func (w *ManualPlanWorkflow) IsExecutable(context cor.Context) bool {
	return w.chain.IsExecutable(context)
}

func (w *ManualPlanWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}
