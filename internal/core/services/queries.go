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

package services

const (
	// QryRecentPlans lists the newest catalog rows; args are the table FQN and a limit.
	QryRecentPlans = "SELECT video_id, title, source_video, created_at, step_count, selected_count, duration_sec FROM `%s` ORDER BY created_at DESC LIMIT %d"

	QryPlanByVideoID = "SELECT * FROM `%s` WHERE video_id = @video_id ORDER BY created_at DESC LIMIT 1"
)
