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

// Package api exposes the services over HTTP with gin. Every route lives
// under /api/v1.
package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-video-manual/internal/core/services"
)

// NewRouter builds the gin engine with tracing and CORS middleware.
func NewRouter(svc *services.Services, serviceName string, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(cors.New(corsConfig(corsOrigins)))

	r.GET("/healthz", Health)

	apiV1 := r.Group("/api/v1")
	{
		Videos(apiV1, svc)
		Process(apiV1, svc)
		Manual(apiV1, svc)
		Export(apiV1, svc)
		Media(apiV1, svc)
		Dashboard(apiV1, svc)
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowHeaders = append(config.AllowHeaders, "Authorization")
	return config
}
