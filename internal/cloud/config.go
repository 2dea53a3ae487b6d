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

// Package cloud holds the configuration model and the shared service clients
// (Cloud Storage, Pub/Sub, BigQuery, IAM, Vertex AI and OpenAI) used by the
// manual generator. This file defines the TOML configuration layout and its
// defaults.
package cloud

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"google.golang.org/genai"
)

// DefaultSafetySettings relaxes the Gemini safety filters; screen recordings
// of software rarely trip them and a blocked response loses a whole run.
var DefaultSafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
}

// Speech-to-text engines.
const (
	STTEngineWhisper = "whisper"
	STTEngineGPT4o   = "gpt4o"
	STTEngineGemini  = "gemini"
	STTEngineDummy   = "dummy"
)

// Summarizer engines.
const (
	SummarizerEngineOpenAI = "openai"
	SummarizerEngineGemini = "gemini"
	SummarizerEngineNone   = "none"
)

// Scene detection methods.
const (
	SceneMethodFFmpeg   = "ffmpeg"
	SceneMethodInterval = "interval"
)

// Artifact storage backends.
const (
	StorageBackendFile   = "file"
	StorageBackendGCS    = "gcs"
	StorageBackendSQLite = "sqlite"
)

// Telemetry exporters.
const (
	TelemetryExporterGCP  = "gcp"
	TelemetryExporterNone = "none"
)

// Topic subscription key used for upload notifications.
const UploadTopic = "UploadTopic"

// Server configures the HTTP API.
type Server struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSOrigins        []string `toml:"cors_origins"`
	ShutdownTimeoutSec int      `toml:"shutdown_timeout_sec"`
}

// Storage configures local directories, buckets and the artifact backend.
type Storage struct {
	Backend           string   `toml:"backend"` // file, gcs or sqlite
	DataDir           string   `toml:"data_dir"`
	UploadDir         string   `toml:"upload_dir"`
	CaptureDir        string   `toml:"capture_dir"`
	IntermediateDir   string   `toml:"intermediate_dir"`
	ExportDir         string   `toml:"export_dir"`
	InputBucket       string   `toml:"input_bucket"`    // uploads are mirrored here when set
	ArtifactBucket    string   `toml:"artifact_bucket"` // gcs backend only
	ArtifactPrefix    string   `toml:"artifact_prefix"`
	FrameBucket       string   `toml:"frame_bucket"` // captured frames are uploaded here when set
	SQLitePath        string   `toml:"sqlite_path"`
	MaxUploadMB       int64    `toml:"max_upload_mb"`
	AllowedExtensions []string `toml:"allowed_extensions"`
}

// BigQueryDataSource configures the plan catalog.
type BigQueryDataSource struct {
	Enabled     bool   `toml:"enabled"`
	DatasetName string `toml:"dataset"`
	PlanTable   string `toml:"plan_table"`
}

// PromptTemplates holds the LLM prompts. Both are Go templates.
type PromptTemplates struct {
	TranscriptionPrompt string `toml:"transcription"`
	SummaryPrompt       string `toml:"summary"`
}

// VertexAiLLMModel configures one Gemini model wrapped by a rate limiter.
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`
	SystemInstructions string  `toml:"system_instructions"`
	Temperature        float32 `toml:"temperature"`
	TopP               float32 `toml:"top_p"`
	TopK               float32 `toml:"top_k"`
	MaxTokens          int32   `toml:"max_tokens"`
	OutputFormat       string  `toml:"output_format"`
	RateLimit          int     `toml:"rate_limit"` // requests per second
}

// TopicSubscription binds a logical topic to a Pub/Sub subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`
	DeadLetterTopic  string `toml:"dead_letter_topic"`
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
}

// Manual holds the planner thresholds.
type Manual struct {
	AutoMergeThresholdSec float64 `toml:"auto_merge_threshold_sec"`
	MinStepDurationSec    float64 `toml:"min_step_duration_sec"`
}

// Scenes configures scene detection.
type Scenes struct {
	Method              string  `toml:"method"`
	Threshold           float64 `toml:"threshold"` // 0-100, higher means fewer scenes
	MinSceneDurationSec float64 `toml:"min_scene_duration_sec"`
	IntervalSec         float64 `toml:"interval_sec"`
	FrameWidth          int     `toml:"frame_width"`
	FrameFormat         string  `toml:"frame_format"`
}

// STT selects and configures the speech-to-text engine.
type STT struct {
	Engine     string `toml:"engine"`
	Language   string `toml:"language"`
	AgentModel string `toml:"agent_model"` // key into AgentModels for gemini
}

// Summarizer selects and configures the narration summarizer.
type Summarizer struct {
	Engine     string `toml:"engine"`
	AgentModel string `toml:"agent_model"`
}

// Export configures Markdown templates and the PDF converter.
type Export struct {
	TemplateDir     string   `toml:"template_dir"`
	DefaultTemplate string   `toml:"default_template"`
	PDFCommand      string   `toml:"pdf_command"`
	PDFArgs         []string `toml:"pdf_args"` // {input} and {output} are substituted
}

// Media configures the ffmpeg tool chain.
type Media struct {
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
	TimeoutSec  int    `toml:"timeout_sec"`
}

// OpenAI configures the OpenAI client. The key normally comes from the
// OPENAI_API_KEY environment variable.
type OpenAI struct {
	APIKey             string `toml:"api_key"`
	BaseURL            string `toml:"base_url"`
	ChatModel          string `toml:"chat_model"`
	WhisperModel       string `toml:"whisper_model"`
	TranscriptionModel string `toml:"transcription_model"`
}

// Logging configures the slog handler.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // json or text
	File   string `toml:"file"`
	// OTelBridge also sends every record to the OpenTelemetry logs bridge.
	OTelBridge bool `toml:"otel_bridge"`
}

// Telemetry configures OpenTelemetry export.
type Telemetry struct {
	Exporter    string `toml:"exporter"`
	ServiceName string `toml:"service_name"`
}

// Config is the root of the TOML configuration.
type Config struct {
	Application struct {
		Name                      string `toml:"name"`
		GoogleProjectId           string `toml:"google_project_id"`
		GoogleLocation            string `toml:"location"`
		ThreadPoolSize            int    `toml:"thread_pool_size"`
		SignerServiceAccountEmail string `toml:"signer_service_account_email"`
	} `toml:"application"`
	Server             Server                       `toml:"server"`
	Storage            Storage                      `toml:"storage"`
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"`
	PromptTemplates    PromptTemplates              `toml:"prompt_templates"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`
	AgentModels        map[string]VertexAiLLMModel  `toml:"agent_models"`
	Manual             Manual                       `toml:"manual"`
	Scenes             Scenes                       `toml:"scenes"`
	STT                STT                          `toml:"stt"`
	Summarizer         Summarizer                   `toml:"summarizer"`
	Export             Export                       `toml:"export"`
	Media              Media                        `toml:"media"`
	OpenAI             OpenAI                       `toml:"openai"`
	Logging            Logging                      `toml:"logging"`
	Telemetry          Telemetry                    `toml:"telemetry"`
}

// NewConfig returns a configuration populated with defaults. Values decoded
// from TOML afterwards override them field by field.
func NewConfig() *Config {
	c := &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		AgentModels:        make(map[string]VertexAiLLMModel),
	}
	c.Application.Name = "video-manual"
	c.Application.GoogleLocation = "us-central1"
	c.Application.ThreadPoolSize = 4

	c.Server = Server{Host: "0.0.0.0", Port: 8080, CORSOrigins: []string{"*"}, ShutdownTimeoutSec: 10}
	c.Storage = Storage{
		Backend:           StorageBackendFile,
		DataDir:           "./data",
		UploadDir:         "./data/uploads",
		CaptureDir:        "./data/captures",
		IntermediateDir:   "./data/intermediate",
		ExportDir:         "./data/exports",
		ArtifactPrefix:    "artifacts",
		SQLitePath:        "./data/artifacts.db",
		MaxUploadMB:       500,
		AllowedExtensions: []string{"mp4", "mov", "avi", "mkv"},
	}
	c.BigQueryDataSource = BigQueryDataSource{DatasetName: "video_manual", PlanTable: "manual_plans"}
	c.Manual = Manual{AutoMergeThresholdSec: 5.0, MinStepDurationSec: 3.0}
	c.Scenes = Scenes{
		Method:              SceneMethodFFmpeg,
		Threshold:           30,
		MinSceneDurationSec: 2.0,
		IntervalSec:         5.0,
		FrameWidth:          1280,
		FrameFormat:         "jpg",
	}
	c.STT = STT{Engine: STTEngineDummy, Language: "ja"}
	c.Summarizer = Summarizer{Engine: SummarizerEngineNone}
	c.Export = Export{
		TemplateDir:     "./templates",
		DefaultTemplate: "default.md.tmpl",
		PDFCommand:      "pandoc",
		PDFArgs:         []string{"{input}", "-o", "{output}"},
	}
	c.Media = Media{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe", TimeoutSec: 600}
	c.OpenAI = OpenAI{
		ChatModel:          "gpt-4o-mini",
		WhisperModel:       "whisper-1",
		TranscriptionModel: "gpt-4o-transcribe",
	}
	c.Logging = Logging{Level: "info", Format: "json", File: "app.log"}
	c.Telemetry = Telemetry{Exporter: TelemetryExporterNone, ServiceName: "video-manual"}
	return c
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Manual.AutoMergeThresholdSec < 0 {
		errs = append(errs, fmt.Errorf("manual.auto_merge_threshold_sec must be >= 0, got %v", c.Manual.AutoMergeThresholdSec))
	}
	if c.Manual.MinStepDurationSec < 0 {
		errs = append(errs, fmt.Errorf("manual.min_step_duration_sec must be >= 0, got %v", c.Manual.MinStepDurationSec))
	}
	if c.Scenes.Threshold < 0 || c.Scenes.Threshold > 100 {
		errs = append(errs, fmt.Errorf("scenes.threshold must be within 0-100, got %v", c.Scenes.Threshold))
	}
	if c.Scenes.Method == SceneMethodInterval && c.Scenes.IntervalSec <= 0 {
		errs = append(errs, errors.New("scenes.interval_sec must be > 0 for the interval method"))
	}
	if c.Storage.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("storage.max_upload_mb must be > 0"))
	}
	checkOneOf := func(field, value string, allowed ...string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("%s must be one of [%s], got %q", field, strings.Join(allowed, ", "), value))
		}
	}
	checkOneOf("stt.engine", c.STT.Engine, STTEngineWhisper, STTEngineGPT4o, STTEngineGemini, STTEngineDummy)
	checkOneOf("summarizer.engine", c.Summarizer.Engine, SummarizerEngineOpenAI, SummarizerEngineGemini, SummarizerEngineNone)
	checkOneOf("scenes.method", c.Scenes.Method, SceneMethodFFmpeg, SceneMethodInterval)
	checkOneOf("storage.backend", c.Storage.Backend, StorageBackendFile, StorageBackendGCS, StorageBackendSQLite)
	checkOneOf("telemetry.exporter", c.Telemetry.Exporter, TelemetryExporterGCP, TelemetryExporterNone)
	checkOneOf("logging.format", c.Logging.Format, "json", "text")

	if c.Storage.Backend == StorageBackendGCS && c.Storage.ArtifactBucket == "" {
		errs = append(errs, errors.New("storage.artifact_bucket is required for the gcs backend"))
	}
	if c.STT.Engine == STTEngineGemini {
		if _, ok := c.AgentModels[c.STT.AgentModel]; !ok {
			errs = append(errs, fmt.Errorf("stt.agent_model %q is not a configured agent model", c.STT.AgentModel))
		}
	}
	if c.Summarizer.Engine == SummarizerEngineGemini {
		if _, ok := c.AgentModels[c.Summarizer.AgentModel]; !ok {
			errs = append(errs, fmt.Errorf("summarizer.agent_model %q is not a configured agent model", c.Summarizer.AgentModel))
		}
	}
	return errors.Join(errs...)
}

// IsAllowedExtension reports whether ext (with or without the leading dot) is
// an accepted upload extension. The match ignores case.
func (c *Config) IsAllowedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, allowed := range c.Storage.AllowedExtensions {
		if strings.ToLower(allowed) == ext {
			return true
		}
	}
	return false
}

// MaxUploadBytes is the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Storage.MaxUploadMB * 1024 * 1024
}
