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

// Package render turns a manual plan into Markdown and converts Markdown
// into PDF through an external converter.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/jaycherian/gcp-go-video-manual/internal/core/model"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/planner"
	"gopkg.in/yaml.v3"
)

// DefaultTemplateName is the built-in template.
const DefaultTemplateName = "default.md.tmpl"

var (
	// ErrTemplate is returned when a template is missing or fails.
	ErrTemplate = errors.New("template error")
	// ErrExport is returned when writing or converting an export fails.
	ErrExport = errors.New("export failed")
)

//go:embed templates/*.tmpl
var embedded embed.FS

// FrontMatter is the YAML header of every rendered manual.
type FrontMatter struct {
	Title  string `yaml:"title"`
	Date   string `yaml:"date"`
	Source string `yaml:"source"`
}

// TemplateData is what templates are executed with. Steps holds only the
// selected steps, in plan order.
type TemplateData struct {
	Title       string
	SourceVideo string
	CreatedAt   string
	FrontMatter string
	Steps       []model.ManualStep
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"seconds": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// MarkdownRenderer renders plans with templates from templateDir, falling
// back to the embedded templates.
type MarkdownRenderer struct {
	templateDir string
	defaultName string
}

func NewMarkdownRenderer(templateDir, defaultName string) *MarkdownRenderer {
	if defaultName == "" {
		defaultName = DefaultTemplateName
	}
	return &MarkdownRenderer{templateDir: templateDir, defaultName: defaultName}
}

// Templates lists the template names available to Render.
func (r *MarkdownRenderer) Templates() []string {
	names := map[string]struct{}{}
	if entries, err := fs.ReadDir(embedded, "templates"); err == nil {
		for _, e := range entries {
			names[e.Name()] = struct{}{}
		}
	}
	if r.templateDir != "" {
		if entries, err := os.ReadDir(r.templateDir); err == nil {
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(e.Name(), ".tmpl") {
					names[e.Name()] = struct{}{}
				}
			}
		}
	}
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (r *MarkdownRenderer) load(name string) (*template.Template, error) {
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("%w: invalid template name %q", ErrTemplate, name)
	}
	if r.templateDir != "" {
		if body, err := os.ReadFile(filepath.Join(r.templateDir, name)); err == nil {
			return parse(name, string(body))
		}
	}
	body, err := embedded.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("%w: template not found: %s", ErrTemplate, name)
	}
	return parse(name, string(body))
}

func parse(name, body string) (*template.Template, error) {
	t, err := template.New(name).Funcs(funcs).Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrTemplate, name, err)
	}
	return t, nil
}

// NewTemplateData prepares plan for rendering.
func NewTemplateData(plan *model.ManualPlan) (*TemplateData, error) {
	createdAt := plan.CreatedAt.Format(time.RFC3339)
	fm, err := yaml.Marshal(FrontMatter{Title: plan.Title, Date: createdAt, Source: plan.SourceVideo})
	if err != nil {
		return nil, fmt.Errorf("%w: front matter: %v", ErrTemplate, err)
	}
	return &TemplateData{
		Title:       plan.Title,
		SourceVideo: plan.SourceVideo,
		CreatedAt:   createdAt,
		FrontMatter: "---\n" + string(fm) + "---\n",
		Steps:       planner.SelectedSteps(plan),
	}, nil
}

// Render executes the named template (the default when empty) against the
// selected steps of plan.
func (r *MarkdownRenderer) Render(plan *model.ManualPlan, templateName string) (string, error) {
	if templateName == "" {
		templateName = r.defaultName
	}
	tmpl, err := r.load(templateName)
	if err != nil {
		return "", err
	}
	data, err := NewTemplateData(plan)
	if err != nil {
		return "", err
	}
	var buffer bytes.Buffer
	if err := tmpl.Execute(&buffer, data); err != nil {
		return "", fmt.Errorf("%w: execute %s: %v", ErrTemplate, templateName, err)
	}
	return buffer.String(), nil
}

// RenderToFile renders plan and writes the result to outputPath.
func (r *MarkdownRenderer) RenderToFile(plan *model.ManualPlan, templateName, outputPath string) (string, error) {
	content, err := r.Render(plan, templateName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExport, err)
	}
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExport, err)
	}
	return content, nil
}
