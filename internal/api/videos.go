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
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/services"
)

// UploadFormField is the multipart field carrying the video.
const UploadFormField = "file"

func Videos(r *gin.RouterGroup, svc *services.Services) {
	videos := r.Group("/videos")
	{
		videos.POST("/upload", func(c *gin.Context) {
			header, err := c.FormFile(UploadFormField)
			if err != nil {
				abortWithError(c, fmt.Errorf("%w: %v", services.ErrValidation, err))
				return
			}
			file, err := header.Open()
			if err != nil {
				abortWithError(c, err)
				return
			}
			defer file.Close()

			out, err := svc.Videos.Save(c.Request.Context(), header.Filename, file)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		videos.GET("/:id", func(c *gin.Context) {
			out, err := svc.Videos.Find(c.Param("id"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})
	}
}
