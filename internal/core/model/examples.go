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

// Package model defines the core data structures for the application.
// This file provides example documents that are serialised into LLM prompts
// so the model can see the exact JSON shape it is expected to return.
package model

// GetExampleTranscription returns a small transcription used as the output
// example in speech-to-text prompts.
func GetExampleTranscription() *Transcription {
	return &Transcription{
		VideoFilename: "settings-walkthrough.mp4",
		DurationSec:   12.5,
		Segments: []TranscriptionSegment{
			{Start: 0.0, End: 4.2, Text: "まず、画面左上のメニューボタンをクリックします。"},
			{Start: 4.2, End: 8.0, Text: "設定メニューから言語設定を選択します。"},
			{Start: 8.4, End: 12.5, Text: "日本語を選んで保存ボタンを押してください。"},
		},
	}
}

// GetDemoSegments returns the canned narration used by the dummy
// speech-to-text engine.
func GetDemoSegments() []TranscriptionSegment {
	return []TranscriptionSegment{
		{Start: 0.0, End: 5.0, Text: "こんにちは、このビデオでは操作手順を説明します。"},
		{Start: 5.0, End: 10.0, Text: "まず、画面左上のメニューボタンをクリックしてください。"},
		{Start: 10.0, End: 15.0, Text: "次に、設定メニューから言語設定を選択します。"},
		{Start: 15.0, End: 20.0, Text: "日本語を選択して、保存ボタンをクリックしてください。"},
		{Start: 20.0, End: 25.0, Text: "設定が完了しました。これで操作は終了です。"},
	}
}
