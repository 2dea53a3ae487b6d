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
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/services"
)

func Media(r *gin.RouterGroup, svc *services.Services) {
	media := r.Group("/media")
	{
		// Frames in Cloud Storage are returned as a signed URL; local frames
		// are served directly.
		media.GET("/:id/steps/:index/image", func(c *gin.Context) {
			index, err := strconv.Atoi(c.Param("index"))
			if err != nil {
				abortWithError(c, fmt.Errorf("%w: step index %q", services.ErrValidation, c.Param("index")))
				return
			}
			img, err := svc.Media.StepImage(c.Request.Context(), c.Param("id"), index)
			if err != nil {
				abortWithError(c, err)
				return
			}
			if img.URL != "" {
				c.JSON(http.StatusOK, img)
				return
			}
			c.File(img.LocalPath)
		})
	}
}
