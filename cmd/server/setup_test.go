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

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupOSKeepsExistingRuntime(t *testing.T) {
	t.Setenv(cloud.EnvConfigFilePrefix, "elsewhere")
	t.Setenv(cloud.EnvConfigRuntime, "test")

	require.NoError(t, SetupOS())
	assert.Equal(t, "elsewhere", os.Getenv(cloud.EnvConfigFilePrefix))
	assert.Equal(t, "test", os.Getenv(cloud.EnvConfigRuntime))
}

func TestLoadConfigFromOverlay(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte("[server]\nport = 9090\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.ci.toml"), []byte("[manual]\nauto_merge_threshold_sec = 2.5\n"), 0o644))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "ci")

	config, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, 2.5, config.Manual.AutoMergeThresholdSec)
}

func TestSetupListenersWithoutCloud(t *testing.T) {
	config := cloud.NewConfig()
	clients := &cloud.ServiceClients{PubSubListeners: map[string]*cloud.PubSubListener{}}
	assert.NotPanics(t, func() {
		SetupListeners(context.Background(), config, clients, &workflow.Collaborators{})
	})
}
