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

package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaycherian/gcp-go-video-manual/internal/core/media"
)

// PDFExporter converts Markdown to PDF by running an external program such
// as pandoc. The {input} and {output} placeholders in args are replaced with
// the file paths.
type PDFExporter struct {
	command string
	args    []string
	runner  media.Runner
}

func NewPDFExporter(command string, args []string, runner media.Runner) *PDFExporter {
	if runner == nil {
		runner = media.ExecRunner{}
	}
	return &PDFExporter{command: command, args: args, runner: runner}
}

// Args returns the converter arguments for the given paths.
func (p *PDFExporter) Args(markdownPath, pdfPath string) []string {
	out := make([]string, 0, len(p.args))
	for _, a := range p.args {
		a = strings.ReplaceAll(a, "{input}", markdownPath)
		a = strings.ReplaceAll(a, "{output}", pdfPath)
		out = append(out, a)
	}
	return out
}

// Convert writes pdfPath from markdownPath.
func (p *PDFExporter) Convert(ctx context.Context, markdownPath, pdfPath string) error {
	if p.command == "" {
		return fmt.Errorf("%w: no pdf converter configured", ErrExport)
	}
	if _, err := os.Stat(markdownPath); err != nil {
		return fmt.Errorf("%w: %v", ErrExport, err)
	}
	if err := os.MkdirAll(filepath.Dir(pdfPath), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrExport, err)
	}
	args := p.Args(markdownPath, pdfPath)
	slog.InfoContext(ctx, "converting markdown to pdf", "cmd", p.command, "input", markdownPath)
	if _, stderr, err := p.runner.Run(ctx, p.command, args...); err != nil {
		return fmt.Errorf("%w: %s: %v: %s", ErrExport, p.command, err, strings.TrimSpace(string(stderr)))
	}
	if _, err := os.Stat(pdfPath); err != nil {
		return fmt.Errorf("%w: converter produced no output: %v", ErrExport, err)
	}
	return nil
}
