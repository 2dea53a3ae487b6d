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
	"fmt"

	"go.opentelemetry.io/otel/codes"
)

// BaseChain runs its commands in order, each inside its own span. After every
// command the value under CtxOut is moved to CtxIn, so a command's output is
// the next command's input. The chain stops at the first recorded error
// unless ContinueOnFailure(true) was set, and it always stops once the Go
// context is cancelled. A failed command leaves no output, so with
// ContinueOnFailure the following command only runs when its input key is
// still set.
type BaseChain struct {
	BaseCommand
	continueOnFailure bool
	commands          []Command
}

// NewBaseChain creates an empty chain that stops at the first error.
func NewBaseChain(name string) *BaseChain {
	return &BaseChain{BaseCommand: *NewBaseCommand(name)}
}

func (c *BaseChain) ContinueOnFailure(continueOnFailure bool) Chain {
	c.continueOnFailure = continueOnFailure
	return c
}

func (c *BaseChain) AddCommand(command Command) Chain {
	c.commands = append(c.commands, command)
	return c
}

// IsExecutable only needs a Go context; the first command checks its own input.
func (c *BaseChain) IsExecutable(context Context) bool {
	return context != nil && context.GetContext() != nil
}

func (c *BaseChain) Execute(chCtx Context) {
	parentCtx := chCtx.GetContext()
	outerCtx, chainSpan := c.Tracer.Start(parentCtx, fmt.Sprintf("%s_execute", c.GetName()))
	defer func() {
		chCtx.SetContext(parentCtx)
		chainSpan.End()
	}()

	for _, command := range c.commands {
		if chCtx.HasErrors() && !c.continueOnFailure {
			break
		}
		if err := outerCtx.Err(); err != nil {
			chCtx.AddError(c.GetName(), fmt.Errorf("chain cancelled before %s: %w", command.GetName(), err))
			break
		}

		commandCtx, commandSpan := c.Tracer.Start(outerCtx, command.GetName())
		if command.IsExecutable(chCtx) {
			chCtx.SetContext(commandCtx)
			command.Execute(chCtx)
			chCtx.SetContext(outerCtx)
		} else {
			commandSpan.AddEvent(fmt.Sprintf("skipped %s: not executable", command.GetName()))
		}

		if err, failed := chCtx.GetErrors()[command.GetName()]; failed {
			commandSpan.RecordError(err)
			commandSpan.SetStatus(codes.Error, err.Error())
		} else {
			commandSpan.SetStatus(codes.Ok, "")
		}
		commandSpan.End()

		out := chCtx.Get(CtxOut)
		chCtx.Remove(CtxIn)
		if out != nil {
			chCtx.Add(CtxIn, out)
		}
		chCtx.Remove(CtxOut)
	}

	if chCtx.HasErrors() {
		chainSpan.SetStatus(codes.Error, "chain failed")
	} else {
		chainSpan.SetStatus(codes.Ok, "")
	}
}
