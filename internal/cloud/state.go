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
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"
)

// ServiceClients holds every external client the application talks to. A
// client is nil when its service is not configured: the Google Cloud clients
// need application.google_project_id and the OpenAI client needs an API key.
type ServiceClients struct {
	StorageClient   *storage.Client
	PubsubClient    *pubsub.Client
	GenAIClient     *genai.Client
	BiqQueryClient  *bigquery.Client
	IAMClient       *credentials.IamCredentialsClient
	OpenAIClient    *openai.Client
	PubSubListeners map[string]*PubSubListener
	AgentModels     map[string]*QuotaAwareGenerativeAIModel
}

// HasGoogleCloud reports whether the Google Cloud clients were created.
func (c *ServiceClients) HasGoogleCloud() bool {
	return c.StorageClient != nil
}

// Close releases every open client.
func (c *ServiceClients) Close() {
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
	if c.BiqQueryClient != nil {
		_ = c.BiqQueryClient.Close()
	}
	if c.IAMClient != nil {
		_ = c.IAMClient.Close()
	}
}

// NewCloudServiceClients creates the clients the configuration asks for.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	clients := &ServiceClients{
		PubSubListeners: make(map[string]*PubSubListener),
		AgentModels:     make(map[string]*QuotaAwareGenerativeAIModel),
	}

	if config.OpenAI.APIKey != "" {
		opts := []option.RequestOption{option.WithAPIKey(config.OpenAI.APIKey)}
		if config.OpenAI.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(config.OpenAI.BaseURL))
		}
		oc := openai.NewClient(opts...)
		clients.OpenAIClient = &oc
	}

	projectID := config.Application.GoogleProjectId
	if projectID == "" {
		slog.InfoContext(ctx, "no google project configured, running without Google Cloud clients")
		return clients, nil
	}

	var err error
	if clients.StorageClient, err = storage.NewClient(ctx); err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if clients.PubsubClient, err = pubsub.NewClient(ctx, projectID); err != nil {
		clients.Close()
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	if clients.BiqQueryClient, err = bigquery.NewClient(ctx, projectID); err != nil {
		clients.Close()
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}
	if config.Application.SignerServiceAccountEmail != "" {
		if clients.IAMClient, err = credentials.NewIamCredentialsClient(ctx); err != nil {
			clients.Close()
			return nil, fmt.Errorf("failed to create iam credentials client: %w", err)
		}
	}

	if len(config.AgentModels) > 0 {
		clients.GenAIClient, err = genai.NewClient(ctx, &genai.ClientConfig{
			Project:  projectID,
			Location: config.Application.GoogleLocation,
			Backend:  genai.BackendVertexAI,
		})
		if err != nil {
			clients.Close()
			return nil, fmt.Errorf("failed to create genai client: %w", err)
		}
		for key, values := range config.AgentModels {
			modelConfig := &genai.GenerateContentConfig{
				Temperature:      genai.Ptr[float32](values.Temperature),
				TopP:             genai.Ptr[float32](values.TopP),
				TopK:             genai.Ptr[float32](values.TopK),
				MaxOutputTokens:  values.MaxTokens,
				SafetySettings:   DefaultSafetySettings,
				ResponseMIMEType: values.OutputFormat,
			}
			if values.SystemInstructions != "" {
				modelConfig.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}}
			}
			clients.AgentModels[key] = NewQuotaAwareModel(modelConfig, values.Model, clients.GenAIClient.Models, values.RateLimit)
			slog.DebugContext(ctx, "configured agent model", "key", key, "model", values.Model)
		}
	}

	for key, sub := range config.TopicSubscriptions {
		clients.PubSubListeners[key] = NewPubSubListener(clients.PubsubClient, sub.Name, nil)
	}

	return clients, nil
}
