// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Prerequisite checker for tool existence and versions

package prereq

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// versionTimeout bounds a single version probe
const versionTimeout = 5 * time.Second

// Checker verifies tool existence
type Checker struct {
	tools map[string]*Tool
}

// NewChecker creates a new prerequisite checker
func NewChecker() *Checker {
	return &Checker{
		tools: DefaultTools(),
	}
}

// NewCheckerWithTools creates a checker with custom tools
func NewCheckerWithTools(tools map[string]*Tool) *Checker {
	return &Checker{
		tools: tools,
	}
}

// CheckTool checks if a specific tool exists
func (c *Checker) CheckTool(ctx context.Context, name string) CheckResult {
	result := CheckResult{Name: name}

	command := name
	var versionArgs []string
	if tool, ok := c.tools[strings.ToLower(name)]; ok {
		command = tool.Command
		versionArgs = tool.VersionArgs
	}

	path, err := exec.LookPath(command)
	if err != nil {
		return result
	}

	result.Found = true
	result.Path = path
	result.Version = getVersion(ctx, path, versionArgs)
	return result
}

// CheckMultiple checks multiple tools and returns a summary
func (c *Checker) CheckMultiple(ctx context.Context, names []string) *CheckSummary {
	summary := NewCheckSummary()

	for _, name := range names {
		summary.AddResult(c.CheckTool(ctx, name))
	}

	return summary
}

// GetInstallGuide returns installation instructions for a tool
func (c *Checker) GetInstallGuide(name string) string {
	tool, ok := c.tools[strings.ToLower(name)]
	if !ok {
		return "No installation guide available for " + name
	}
	return tool.InstallGuide
}

// FormatMissing returns a formatted string of missing tools with install guides
func (c *Checker) FormatMissing(summary *CheckSummary) string {
	if summary.AllFound {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Missing prerequisites:\n\n")

	for _, name := range summary.MissingTools {
		sb.WriteString("─────────────────────────────────\n")
		sb.WriteString(name + "\n")
		sb.WriteString("─────────────────────────────────\n")
		sb.WriteString(c.GetInstallGuide(name))
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// getVersion runs the version probe and returns its first output line.
// ssh prints its version on stderr, so both streams are read.
func getVersion(ctx context.Context, path string, args []string) string {
	if len(args) == 0 {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, args...).CombinedOutput()
	if err != nil {
		return ""
	}

	output := strings.TrimSpace(string(out))
	if idx := strings.Index(output, "\n"); idx > 0 {
		output = output[:idx]
	}

	return output
}
