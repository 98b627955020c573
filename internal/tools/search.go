package tools

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// CodeSearchTool searches file contents for a pattern. It shells out to
// ripgrep when available (fast, respects .gitignore) and falls back to an
// in-process line-by-line walk otherwise, so the tool works on hosts
// without rg installed.
type CodeSearchTool struct {
	workspace string
	restrict  bool
}

func NewCodeSearchTool(workspace string, restrict bool) *CodeSearchTool {
	return &CodeSearchTool{workspace: workspace, restrict: restrict}
}

func (t *CodeSearchTool) Name() string        { return "code_search" }
func (t *CodeSearchTool) Description() string { return "Search file contents in the workspace for a pattern" }
func (t *CodeSearchTool) IsDestructive() bool { return false }
func (t *CodeSearchTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{"type": "string", "description": "Regular expression to search for"},
			"path":    map[string]any{"type": "string", "description": "Directory to search, relative to the workspace (default: workspace root)"},
		},
		"required": []string{"pattern"},
	}
}

// Execute accepts pattern, aliasing the "query" key some planners emit.
func (t *CodeSearchTool) Execute(ctx context.Context, args map[string]any) *Result {
	pattern, _ := args["pattern"].(string)
	if pattern == "" {
		pattern, _ = args["query"].(string)
	}
	if pattern == "" {
		return ErrorResult("pattern is required")
	}
	subPath, _ := args["path"].(string)
	searchRoot := t.workspace
	if subPath != "" {
		resolved, err := resolvePath(subPath, t.workspace, t.restrict)
		if err != nil {
			return ErrorResult(err.Error())
		}
		searchRoot = resolved
	}

	if out, err := runRipgrep(ctx, pattern, searchRoot); err == nil {
		return NewResult(out)
	}

	out, err := fallbackSearch(pattern, searchRoot)
	if err != nil {
		return ErrorResult(err.Error())
	}
	return NewResult(out)
}

func runRipgrep(ctx context.Context, pattern, root string) (string, error) {
	if _, err := exec.LookPath("rg"); err != nil {
		return "", err
	}
	cmd := exec.CommandContext(ctx, "rg", "--line-number", "--no-heading", "--max-count", "200", pattern, root)
	out, err := cmd.Output()
	if err != nil {
		// rg exits 1 when it finds nothing, which is not a failure of the tool.
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return "no matches", nil
		}
		return "", err
	}
	if len(out) == 0 {
		return "no matches", nil
	}
	return string(out), nil
}

// fallbackSearch walks root line by line when ripgrep is unavailable.
func fallbackSearch(pattern, root string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid pattern: %w", err)
	}

	var matches []string
	const maxMatches = 200
	err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".git" || info.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if len(matches) >= maxMatches {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			if re.MatchString(scanner.Text()) {
				rel, _ := filepath.Rel(root, path)
				matches = append(matches, fmt.Sprintf("%s:%d:%s", rel, lineNum, scanner.Text()))
				if len(matches) >= maxMatches {
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "no matches", nil
	}
	return strings.Join(matches, "\n"), nil
}

// BrainstormSearchTermsTool expands a natural-language query into a set of
// candidate search keywords: stopword removal plus a fixed programming
// synonym table. It is non-critical (per the whitelist the Executor uses to
// decide whether a failure halts the loop) and is prepended automatically
// by the Planner when the user prompt contains a search keyword.
type BrainstormSearchTermsTool struct{}

func NewBrainstormSearchTermsTool() *BrainstormSearchTermsTool { return &BrainstormSearchTermsTool{} }

func (t *BrainstormSearchTermsTool) Name() string { return "brainstorm_search_terms" }
func (t *BrainstormSearchTermsTool) Description() string {
	return "Generate relevant search terms for a query"
}
func (t *BrainstormSearchTermsTool) IsDestructive() bool { return false }
func (t *BrainstormSearchTermsTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "The original query to brainstorm terms for"},
		},
		"required": []string{"query"},
	}
}

var searchStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true,
}

var searchSynonyms = map[string][]string{
	"function": {"func", "method", "def"},
	"class":    {"struct", "type", "interface"},
	"variable": {"var", "let", "const"},
	"error":    {"exception", "fail", "bug"},
	"test":     {"spec", "unittest", "pytest"},
	"config":   {"configuration", "settings", "options"},
	"file":     {"document", "script", "module"},
}

func (t *BrainstormSearchTermsTool) Execute(ctx context.Context, args map[string]any) *Result {
	query, _ := args["query"].(string)
	if query == "" {
		return ErrorResult("query is required")
	}

	termSet := map[string]bool{}
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if searchStopWords[word] {
			continue
		}
		termSet[word] = true
		for _, syn := range searchSynonyms[word] {
			termSet[syn] = true
		}
	}

	terms := make([]string, 0, len(termSet))
	for term := range termSet {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	return NewResult(fmt.Sprintf("Search terms: %s", strings.Join(terms, ", ")))
}
