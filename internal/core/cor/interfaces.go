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

// Package cor holds the chain-of-responsibility primitives every workflow in
// the manual generator is built from. A workflow is a Chain of Commands that
// share one Context: commands read their inputs from it, write results back,
// and record failures on it instead of returning errors.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Keys used by BaseChain to pipe the output of one command into the next.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the state shared by the commands of a single workflow run.
type Context interface {
	SetContext(ctx context.Context)
	GetContext() context.Context

	// Add stores a value and returns the receiver for chaining.
	Add(key string, value interface{}) Context
	Get(key string) interface{}
	Remove(key string)

	// AddError records err under key, normally the failing command's name.
	AddError(key string, err error)
	GetErrors() map[string]error
	HasErrors() bool
	// Err folds every recorded error into one, or returns nil.
	Err() error

	// AddTempFile registers a file or directory that Close removes.
	AddTempFile(path string)
	GetTempFiles() []string
	Close()
}

// Executable is anything that runs against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is a single named, instrumented unit of work.
type Command interface {
	Executable

	GetName() string
	GetInputParam() string
	GetOutputParam() string

	// IsExecutable is the precondition checked by a chain before Execute.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain runs commands in order. A chain is a Command so it can be nested.
type Chain interface {
	Command
	ContinueOnFailure(bool) Chain
	AddCommand(command Command) Chain
}
