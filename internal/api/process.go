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

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/services"
)

func Process(r *gin.RouterGroup, svc *services.Services) {
	process := r.Group("/process")
	{
		process.POST("/transcribe/:id", func(c *gin.Context) {
			out, err := svc.Process.Transcribe(c.Request.Context(), c.Param("id"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		process.GET("/transcribe/:id", func(c *gin.Context) {
			out, err := svc.Process.GetTranscription(c.Request.Context(), c.Param("id"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		process.POST("/scene-detect/:id", func(c *gin.Context) {
			out, err := svc.Process.DetectScenes(c.Request.Context(), c.Param("id"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		process.GET("/scene-detect/:id", func(c *gin.Context) {
			out, err := svc.Process.GetScenes(c.Request.Context(), c.Param("id"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})
	}
}
