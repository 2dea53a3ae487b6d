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
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// QuotaAwareGenerativeAIModel throttles calls to one Gemini model so bursts
// of work stay under the project's requests-per-second quota.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig
	ModelName               string
	ModelHandle             *genai.Models
	RateLimit               *rate.Limiter
}

// NewQuotaAwareModel wraps a model allowing requestsPerSecond calls per
// second. A non-positive rate means one call per second.
func NewQuotaAwareModel(config *genai.GenerateContentConfig, name string, models *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: config,
		ModelName:               name,
		ModelHandle:             models,
		RateLimit:               rate.NewLimiter(rate.Every(time.Second/time.Duration(requestsPerSecond)), requestsPerSecond),
	}
}

// GenerateContent waits for a limiter token and calls the model.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
}
