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

package media

import (
	"fmt"
	"io"
	"os"

	"github.com/h2non/filetype"
)

// headerSize is enough bytes for filetype to recognise every video container.
const headerSize = 261

// SniffVideo reads the head of r and returns the detected MIME type. It
// fails unless the content is a known video container.
func SniffVideo(r io.Reader) (string, error) {
	head := make([]byte, headerSize)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("%w: read header: %v", ErrVideoProcessing, err)
	}
	head = head[:n]
	if !filetype.IsVideo(head) {
		return "", fmt.Errorf("%w: content is not a video", ErrVideoProcessing)
	}
	kind, err := filetype.Match(head)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrVideoProcessing, err)
	}
	return kind.MIME.Value, nil
}

// SniffVideoFile opens path and calls SniffVideo.
func SniffVideoFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrVideoProcessing, err)
	}
	defer f.Close()
	return SniffVideo(f)
}
