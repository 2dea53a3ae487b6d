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
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/services"
)

func Export(r *gin.RouterGroup, svc *services.Services) {
	export := r.Group("/export")
	{
		export.POST("/markdown", func(c *gin.Context) {
			var req model.ExportRequest
			if !bindJSON(c, &req) {
				return
			}
			req.Format = model.FormatMarkdown
			out, err := svc.Manual.ExportMarkdown(c.Request.Context(), &req)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		export.POST("/pdf", func(c *gin.Context) {
			var req model.ExportRequest
			if !bindJSON(c, &req) {
				return
			}
			req.Format = model.FormatPDF
			out, err := svc.Manual.ExportPDF(c.Request.Context(), &req)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		export.GET("/download/:id/:filename", func(c *gin.Context) {
			path, err := svc.Manual.ExportFile(c.Param("id"), c.Param("filename"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.FileAttachment(path, c.Param("filename"))
		})

		export.GET("/templates", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"templates": svc.Manual.Templates()})
		})
	}
}
