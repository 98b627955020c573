package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// scaffoldTemplates lists the project skeletons scaffold_project can lay
// down: each template is a set of relative file paths mapped to content.
var scaffoldTemplates = map[string]map[string]string{
	"go-module": {
		"go.mod":     "module {{name}}\n\ngo 1.25\n",
		"main.go":    "package main\n\nfunc main() {}\n",
		"README.md":  "# {{name}}\n",
		".gitignore": "/bin/\n",
	},
	"cli-cobra": {
		"go.mod":       "module {{name}}\n\ngo 1.25\n",
		"cmd/root.go":  "package cmd\n",
		"main.go":      "package main\n\nfunc main() {}\n",
		"README.md":    "# {{name}}\n",
	},
	"empty": {
		"README.md": "# {{name}}\n",
	},
}

// ScaffoldProjectTool creates a directory tree from a fixed template.
// Destructive: it writes new files to disk and refuses to overwrite an
// existing, non-empty target directory.
type ScaffoldProjectTool struct {
	workspace string
	restrict  bool
}

func NewScaffoldProjectTool(workspace string, restrict bool) *ScaffoldProjectTool {
	return &ScaffoldProjectTool{workspace: workspace, restrict: restrict}
}

func (t *ScaffoldProjectTool) Name() string { return "scaffold_project" }
func (t *ScaffoldProjectTool) Description() string {
	return "Create a project skeleton from a named template (go-module, cli-cobra, empty)"
}
func (t *ScaffoldProjectTool) IsDestructive() bool { return true }
func (t *ScaffoldProjectTool) ParametersSchema() map[string]any {
	templates := make([]string, 0, len(scaffoldTemplates))
	for name := range scaffoldTemplates {
		templates = append(templates, name)
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"template":     map[string]any{"type": "string", "enum": templates, "description": "Template to scaffold"},
			"directory":    map[string]any{"type": "string", "description": "Directory path where the project should be created"},
			"project_name": map[string]any{"type": "string", "description": "Project name (defaults to directory name)"},
		},
		"required": []string{"template", "directory"},
	}
}

func (t *ScaffoldProjectTool) Execute(ctx context.Context, args map[string]any) *Result {
	template, _ := args["template"].(string)
	directory, _ := args["directory"].(string)
	if directory == "" {
		directory, _ = args["path"].(string)
	}
	if template == "" || directory == "" {
		return ErrorResult("template and directory are required")
	}

	files, ok := scaffoldTemplates[template]
	if !ok {
		return ErrorResult(fmt.Sprintf("unknown template: %s", template))
	}

	projectName, _ := args["project_name"].(string)
	if projectName == "" {
		projectName = filepath.Base(directory)
	}

	resolvedDir, err := resolvePath(directory, t.workspace, t.restrict)
	if err != nil {
		return ErrorResult(err.Error())
	}

	if entries, err := os.ReadDir(resolvedDir); err == nil && len(entries) > 0 {
		return ErrorResult(fmt.Sprintf("refusing to scaffold into non-empty directory: %s", directory))
	}

	written := 0
	for relPath, content := range files {
		fullPath := filepath.Join(resolvedDir, relPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return ErrorResult(fmt.Sprintf("failed to create directories: %v", err))
		}
		rendered := renderTemplate(content, projectName)
		if err := os.WriteFile(fullPath, []byte(rendered), 0o644); err != nil {
			return ErrorResult(fmt.Sprintf("failed to write %s: %v", relPath, err))
		}
		written++
	}

	return NewResult(fmt.Sprintf("scaffolded %s project %q in %s (%d files)", template, projectName, directory, written))
}

func renderTemplate(content, name string) string {
	out := make([]byte, 0, len(content))
	for i := 0; i < len(content); i++ {
		if i+8 <= len(content) && content[i:i+8] == "{{name}}" {
			out = append(out, name...)
			i += 7
			continue
		}
		out = append(out, content[i])
	}
	return string(out)
}
