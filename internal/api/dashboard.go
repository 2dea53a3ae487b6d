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

package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/services"
)

// Stats is the dashboard summary.
type Stats struct {
	Videos         int      `json:"videos"`
	Templates      []string `json:"templates"`
	STTEngine      string   `json:"stt_engine"`
	SceneMethod    string   `json:"scene_method"`
	StorageBackend string   `json:"storage_backend"`
	Catalog        bool     `json:"catalog"`
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func Dashboard(r *gin.RouterGroup, svc *services.Services) {
	r.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, &Stats{
			Videos:         svc.Videos.Count(),
			Templates:      svc.Manual.Templates(),
			STTEngine:      svc.Config.STT.Engine,
			SceneMethod:    svc.Config.Scenes.Method,
			StorageBackend: svc.Config.Storage.Backend,
			Catalog:        svc.Catalog.BigqueryClient != nil,
		})
	})

	catalog := r.Group("/catalog")
	{
		catalog.GET("/plans", func(c *gin.Context) {
			limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultCatalogLimit)))
			if err != nil {
				limit = services.DefaultCatalogLimit
			}
			out, err := svc.Catalog.ListPlans(c.Request.Context(), limit)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})
	}
}
