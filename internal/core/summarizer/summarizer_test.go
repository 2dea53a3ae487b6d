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

package summarizer_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/summarizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNoneEngine(t *testing.T) {
	s, err := summarizer.New(cloud.NewConfig(), &cloud.ServiceClients{})
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestNewMissingClients(t *testing.T) {
	config := cloud.NewConfig()
	clients := &cloud.ServiceClients{AgentModels: map[string]*cloud.QuotaAwareGenerativeAIModel{}}

	config.Summarizer.Engine = cloud.SummarizerEngineOpenAI
	_, err := summarizer.New(config, clients)
	assert.ErrorIs(t, err, summarizer.ErrSummary)

	config.Summarizer.Engine = cloud.SummarizerEngineGemini
	_, err = summarizer.New(config, clients)
	assert.ErrorIs(t, err, summarizer.ErrSummary)
}

func TestNewBadPrompt(t *testing.T) {
	config := cloud.NewConfig()
	config.PromptTemplates.SummaryPrompt = "{{ .TEXT"
	_, err := summarizer.New(config, &cloud.ServiceClients{})
	assert.ErrorIs(t, err, summarizer.ErrSummary)
}
