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

// Package media wraps the ffmpeg and ffprobe binaries. Every operation is a
// single subprocess call bounded by the configured timeout; nothing here
// decodes audio or video itself.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-video-manual/internal/cloud"
)

// ErrVideoProcessing wraps every failure of an external media tool.
var ErrVideoProcessing = errors.New("video processing failed")

// Runner executes an external program and returns its stdout and stderr.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// FFmpeg runs ffmpeg and ffprobe with a per-call timeout.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
	runner      Runner
}

// NewFFmpeg builds the wrapper from the media section of the configuration.
// A nil runner selects ExecRunner.
func NewFFmpeg(config cloud.Media, runner Runner) *FFmpeg {
	if runner == nil {
		runner = ExecRunner{}
	}
	timeout := time.Duration(config.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &FFmpeg{
		ffmpegPath:  config.FFmpegPath,
		ffprobePath: config.FFprobePath,
		timeout:     timeout,
		runner:      runner,
	}
}

func (f *FFmpeg) run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	slog.DebugContext(ctx, "running media tool", "cmd", name, "args", strings.Join(args, " "))
	stdout, stderr, err := f.runner.Run(ctx, name, args...)
	if err != nil {
		return stdout, stderr, fmt.Errorf("%w: %s: %v: %s", ErrVideoProcessing, name, err, lastLine(stderr))
	}
	return stdout, stderr, nil
}

// RunFFmpeg runs ffmpeg with args and returns its stderr, where ffmpeg
// writes filter diagnostics such as showinfo.
func (f *FFmpeg) RunFFmpeg(ctx context.Context, args ...string) ([]byte, error) {
	_, stderr, err := f.run(ctx, f.ffmpegPath, args...)
	return stderr, err
}

// Duration returns the container duration of path in seconds.
func (f *FFmpeg) Duration(ctx context.Context, path string) (float64, error) {
	stdout, _, err := f.run(ctx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	if err != nil {
		return 0, err
	}
	return ParseDuration(stdout)
}

// ParseDuration reads the ffprobe duration output.
func ParseDuration(out []byte) (float64, error) {
	value := strings.TrimSpace(string(out))
	d, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unexpected duration %q", ErrVideoProcessing, value)
	}
	return d, nil
}

// ExtractAudio writes the audio track of videoPath to outputPath as 16 kHz
// mono 16-bit PCM WAV, the format speech recognisers expect.
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath, outputPath string) error {
	_, err := f.RunFFmpeg(ctx,
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y", outputPath)
	return err
}

// ExtractFrame saves the frame at timestamp seconds as an image scaled to
// width pixels wide. A width of zero keeps the source size.
func (f *FFmpeg) ExtractFrame(ctx context.Context, videoPath string, timestamp float64, outputPath string, width int) error {
	args := []string{
		"-ss", strconv.FormatFloat(timestamp, 'f', 3, 64),
		"-i", videoPath,
		"-vframes", "1",
		"-q:v", "2",
	}
	if width > 0 {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:-1", width))
	}
	args = append(args, "-y", outputPath)
	_, err := f.RunFFmpeg(ctx, args...)
	return err
}

// MoveFile renames sourcePath to destPath, copying when the two paths are on
// different file systems.
func MoveFile(sourcePath, destPath string) error {
	if err := os.Rename(sourcePath, destPath); err == nil {
		return nil
	}
	in, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("could not open source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("could not open dest file: %w", err)
	}
	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("could not copy to dest from source: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("could not close dest file: %w", err)
	}
	_ = in.Close()
	return os.Remove(sourcePath)
}

func lastLine(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	return lines[len(lines)-1]
}
