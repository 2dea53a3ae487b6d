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
	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/services"
)

func bindJSON(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", services.ErrValidation, err))
		return false
	}
	return true
}

func Manual(r *gin.RouterGroup, svc *services.Services) {
	manual := r.Group("/manual")
	{
		manual.POST("/plan", func(c *gin.Context) {
			var req model.CreatePlanRequest
			if !bindJSON(c, &req) {
				return
			}
			out, err := svc.Manual.CreatePlan(c.Request.Context(), &req)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		manual.GET("/plan/:id", func(c *gin.Context) {
			out, err := svc.Manual.GetPlan(c.Request.Context(), c.Param("id"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		manual.PUT("/plan/:id", func(c *gin.Context) {
			var plan model.ManualPlan
			if !bindJSON(c, &plan) {
				return
			}
			out, err := svc.Manual.UpdatePlan(c.Request.Context(), c.Param("id"), &plan)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		manual.POST("/apply-selection", func(c *gin.Context) {
			var req model.CaptureSelectionRequest
			if !bindJSON(c, &req) {
				return
			}
			out, err := svc.Manual.ApplySelection(c.Request.Context(), &req)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})
	}
}
