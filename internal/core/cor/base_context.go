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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
)

// BaseContext is the map-backed Context used by every workflow. It is not
// safe for concurrent use; commands that fan out must collect results before
// writing them back.
type BaseContext struct {
	data      map[string]interface{}
	errors    map[string]error
	tempFiles []string
	context   context.Context
}

// NewBaseContext returns an empty context. Callers must SetContext before
// running a chain against it.
func NewBaseContext() Context {
	return &BaseContext{
		data:      make(map[string]interface{}),
		errors:    make(map[string]error),
		tempFiles: make([]string, 0),
	}
}

func (c *BaseContext) SetContext(ctx context.Context) {
	c.context = ctx
}

func (c *BaseContext) GetContext() context.Context {
	return c.context
}

// Close removes every registered temporary file or directory.
func (c *BaseContext) Close() {
	for _, path := range c.tempFiles {
		if err := os.RemoveAll(path); err != nil {
			slog.Warn("failed to remove temporary path", "path", path, "error", err)
		}
	}
	c.tempFiles = c.tempFiles[:0]
}

func (c *BaseContext) Add(key string, value interface{}) Context {
	c.data[key] = value
	return c
}

func (c *BaseContext) Get(key string) interface{} {
	return c.data[key]
}

func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

func (c *BaseContext) AddTempFile(path string) {
	c.tempFiles = append(c.tempFiles, path)
}

func (c *BaseContext) GetTempFiles() []string {
	return c.tempFiles
}

func (c *BaseContext) AddError(key string, err error) {
	c.errors[key] = err
}

func (c *BaseContext) GetErrors() map[string]error {
	return c.errors
}

func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}

// Err joins the recorded errors in key order so the message is stable.
func (c *BaseContext) Err() error {
	if len(c.errors) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.errors))
	for k := range c.errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	errs := make([]error, 0, len(keys))
	for _, k := range keys {
		errs = append(errs, fmt.Errorf("%s: %w", k, c.errors[k]))
	}
	return errors.Join(errs...)
}
