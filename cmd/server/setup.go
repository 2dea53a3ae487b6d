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
	"fmt"
	"log"
	"os"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/media"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/services"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/workflow"
)

type StateManager struct {
	config   *cloud.Config
	cloud    *cloud.ServiceClients
	deps     *workflow.Collaborators
	services *services.Services
}

var state = &StateManager{}

// SetupOS points the config loader at ./configs and defaults the runtime
// overlay to "local" unless GCP_RUNTIME is already set.
func SetupOS() error {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		return os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return nil
}

func GetConfig() *cloud.Config {
	if state.config == nil {
		config, err := loadConfig()
		if err != nil {
			log.Fatalf("failed to load configuration: %v", err)
		}
		state.config = config
	}
	return state.config
}

func loadConfig() (*cloud.Config, error) {
	if err := SetupOS(); err != nil {
		return nil, fmt.Errorf("failed to setup os: %w", err)
	}
	config := cloud.NewConfig()
	if err := cloud.LoadConfig(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// InitState builds the clients, collaborators and services and starts the
// upload listener.
func InitState(ctx context.Context) error {
	config := GetConfig()

	for _, dir := range []string{
		config.Storage.UploadDir,
		config.Storage.CaptureDir,
		config.Storage.IntermediateDir,
		config.Storage.ExportDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return err
	}
	state.cloud = cloudClients

	deps, err := workflow.NewCollaborators(ctx, config, cloudClients)
	if err != nil {
		cloudClients.Close()
		return err
	}
	state.deps = deps

	state.services = services.New(config, deps, cloudClients, media.ExecRunner{})

	SetupListeners(ctx, config, cloudClients, deps)
	return nil
}

func serviceName(config *cloud.Config) string {
	if config.Telemetry.ServiceName != "" {
		return config.Telemetry.ServiceName
	}
	return config.Application.Name
}
