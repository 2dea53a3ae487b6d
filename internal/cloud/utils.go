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

package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

const (
	ConfigFileBaseName  = ".env"
	ConfigFileExtension = ".toml"
	ConfigSeparator     = "."
	EnvConfigFilePrefix = "GCP_CONFIG_PREFIX" // directory holding the TOML files
	EnvConfigRuntime    = "GCP_RUNTIME"       // runtime overlay, e.g. local or test
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	DefaultRuntime      = "test"
	MaxRetries          = 3
)

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// ConfigFiles returns the base and runtime configuration file names derived
// from GCP_CONFIG_PREFIX and GCP_RUNTIME.
func ConfigFiles() (base string, runtime string) {
	prefix := os.Getenv(EnvConfigFilePrefix)
	env := os.Getenv(EnvConfigRuntime)
	if env == "" {
		env = DefaultRuntime
	}
	base = filepath.Join(prefix, ConfigFileBaseName+ConfigFileExtension)
	runtime = filepath.Join(prefix, ConfigFileBaseName+ConfigSeparator+env+ConfigFileExtension)
	return base, runtime
}

// LoadConfig fills config from a local .env file, the base TOML file and the
// runtime TOML overlay, in that order. Missing files are skipped. Secrets
// found in the environment win over values from TOML.
func LoadConfig(config *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read .env file: %w", err)
	}

	base, runtime := ConfigFiles()
	for _, name := range []string{base, runtime} {
		if !fileExists(name) {
			slog.Debug("configuration file not found, skipping", "file", name)
			continue
		}
		if _, err := toml.DecodeFile(name, config); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", name, err)
		}
		slog.Debug("loaded configuration file", "file", name)
	}

	if key := os.Getenv(EnvOpenAIAPIKey); key != "" {
		config.OpenAI.APIKey = key
	}
	return nil
}

// GenerateMultiModalResponse sends content to the model, retrying up to
// MaxRetries times, and returns the concatenated text of every candidate with
// any Markdown code fence stripped. Token usage is added to the counters.
func GenerateMultiModalResponse(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	retryCounter metric.Int64Counter,
	model *QuotaAwareGenerativeAIModel,
	content []*genai.Content) (string, error) {

	var resp *genai.GenerateContentResponse
	var err error
	for try := 0; try <= MaxRetries; try++ {
		if try > 0 {
			retryCounter.Add(ctx, 1)
		}
		resp, err = model.GenerateContent(ctx, content)
		if err == nil || ctx.Err() != nil {
			break
		}
		slog.WarnContext(ctx, "generate content failed", "model", model.ModelName, "try", try, "error", err)
	}
	if err != nil {
		return "", err
	}

	if resp.UsageMetadata != nil {
		inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return StripCodeFence(sb.String()), nil
}

// StripCodeFence removes a surrounding ``` or ```json fence.
func StripCodeFence(in string) string {
	out := strings.TrimSpace(in)
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}

// NewTextContent wraps text as a single user turn.
func NewTextContent(in string) []*genai.Content {
	return genai.Text(in)
}

// NewInlineData wraps raw bytes (e.g. WAV audio) as a part.
func NewInlineData(data []byte, mimeType string) *genai.Part {
	return &genai.Part{InlineData: &genai.Blob{Data: data, MIMEType: mimeType}}
}

// NewFileData references an object in Cloud Storage as a part.
func NewFileData(uri string, mimeType string) *genai.Part {
	return &genai.Part{FileData: &genai.FileData{FileURI: uri, MIMEType: mimeType}}
}
