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

package cloud_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	config := cloud.NewConfig()

	assert.Equal(t, 5.0, config.Manual.AutoMergeThresholdSec)
	assert.Equal(t, 3.0, config.Manual.MinStepDurationSec)
	assert.Equal(t, 30.0, config.Scenes.Threshold)
	assert.Equal(t, 2.0, config.Scenes.MinSceneDurationSec)
	assert.Equal(t, int64(500), config.Storage.MaxUploadMB)
	assert.Equal(t, []string{"mp4", "mov", "avi", "mkv"}, config.Storage.AllowedExtensions)
	assert.Equal(t, cloud.STTEngineDummy, config.STT.Engine)
	assert.Equal(t, "ja", config.STT.Language)
	assert.NoError(t, config.Validate())
}

func TestConfigValidate(t *testing.T) {
	config := cloud.NewConfig()
	config.Manual.AutoMergeThresholdSec = -1
	config.STT.Engine = "kaldi"
	config.Storage.Backend = cloud.StorageBackendGCS

	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auto_merge_threshold_sec")
	assert.Contains(t, err.Error(), "stt.engine")
	assert.Contains(t, err.Error(), "artifact_bucket")
}

func TestConfigValidateGeminiNeedsAgentModel(t *testing.T) {
	config := cloud.NewConfig()
	config.STT.Engine = cloud.STTEngineGemini
	config.STT.AgentModel = "flash"
	require.Error(t, config.Validate())

	config.AgentModels["flash"] = cloud.VertexAiLLMModel{Model: "gemini-2.0-flash"}
	assert.NoError(t, config.Validate())
}

func TestIsAllowedExtension(t *testing.T) {
	config := cloud.NewConfig()
	assert.True(t, config.IsAllowedExtension(".MP4"))
	assert.True(t, config.IsAllowedExtension("mkv"))
	assert.False(t, config.IsAllowedExtension(".exe"))
	assert.Equal(t, int64(500*1024*1024), config.MaxUploadBytes())
}

func TestLoadConfigOverlay(t *testing.T) {
	dir := t.TempDir()
	base := "[manual]\nauto_merge_threshold_sec = 8.0\n\n[stt]\nengine = \"whisper\"\n"
	overlay := "[manual]\nauto_merge_threshold_sec = 2.5\n\n[storage]\nallowed_extensions = [\"mp4\"]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(base), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.unit.toml"), []byte(overlay), 0o644))

	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "unit")
	t.Setenv(cloud.EnvOpenAIAPIKey, "sk-test")

	config := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(config))

	assert.Equal(t, 2.5, config.Manual.AutoMergeThresholdSec)
	assert.Equal(t, 3.0, config.Manual.MinStepDurationSec)
	assert.Equal(t, cloud.STTEngineWhisper, config.STT.Engine)
	assert.Equal(t, []string{"mp4"}, config.Storage.AllowedExtensions)
	assert.Equal(t, "sk-test", config.OpenAI.APIKey)
}

func TestLoadConfigRejectsBadToml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte("[manual\n"), 0o644))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)

	assert.Error(t, cloud.LoadConfig(cloud.NewConfig()))
}
