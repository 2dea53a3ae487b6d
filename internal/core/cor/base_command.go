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

package cor

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// MeterName is the instrumentation scope shared by every command's counters.
const MeterName = "github.com/jaycherian/gcp-go-video-manual"

// BaseCommand supplies naming, parameter keys and telemetry to concrete
// commands, which embed it and implement Execute.
type BaseCommand struct {
	Name            string
	InputParamName  string // defaults to CtxIn
	OutputParamName string // defaults to CtxOut
	Tracer          trace.Tracer
	Meter           metric.Meter
	SuccessCounter  metric.Int64Counter
	ErrorCounter    metric.Int64Counter
}

// NewBaseCommand creates a command named name with "<name>.counter.success"
// and "<name>.counter.error" counters registered on the global meter.
func NewBaseCommand(name string) *BaseCommand {
	meter := otel.Meter(MeterName)

	successCounter, err := meter.Int64Counter(fmt.Sprintf("%s.counter.success", name))
	if err != nil {
		slog.Warn("failed to create success counter", "command", name, "error", err)
	}
	errorCounter, err := meter.Int64Counter(fmt.Sprintf("%s.counter.error", name))
	if err != nil {
		slog.Warn("failed to create error counter", "command", name, "error", err)
	}

	return &BaseCommand{
		Name:           name,
		Tracer:         otel.Tracer(name),
		Meter:          meter,
		SuccessCounter: successCounter,
		ErrorCounter:   errorCounter,
	}
}

func (c *BaseCommand) GetName() string {
	return c.Name
}

// IsExecutable requires a Go context and a non-nil value under the input key.
func (c *BaseCommand) IsExecutable(context Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(c.GetInputParam()) != nil
}

func (c *BaseCommand) GetInputParam() string {
	if len(c.InputParamName) == 0 {
		return CtxIn
	}
	return c.InputParamName
}

func (c *BaseCommand) GetOutputParam() string {
	if len(c.OutputParamName) == 0 {
		return CtxOut
	}
	return c.OutputParamName
}

func (c *BaseCommand) GetTracer() trace.Tracer {
	return c.Tracer
}

func (c *BaseCommand) GetMeter() metric.Meter {
	return c.Meter
}

func (c *BaseCommand) GetSuccessCounter() metric.Int64Counter {
	return c.SuccessCounter
}

func (c *BaseCommand) GetErrorCounter() metric.Int64Counter {
	return c.ErrorCounter
}

// Fail records err on the context under the command's name and bumps the
// error counter.
func (c *BaseCommand) Fail(chCtx Context, err error) {
	chCtx.AddError(c.GetName(), err)
	if c.ErrorCounter != nil {
		c.ErrorCounter.Add(ctxOrBackground(chCtx), 1)
	}
}

// Succeed bumps the success counter.
func (c *BaseCommand) Succeed(chCtx Context) {
	if c.SuccessCounter != nil {
		c.SuccessCounter.Add(ctxOrBackground(chCtx), 1)
	}
}

func ctxOrBackground(chCtx Context) context.Context {
	if ctx := chCtx.GetContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// GetAs reads key from the context as a T. The second result is false when
// the key is missing or holds another type.
func GetAs[T any](chCtx Context, key string) (T, bool) {
	v, ok := chCtx.Get(key).(T)
	return v, ok
}
