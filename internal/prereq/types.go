// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Prerequisite types and tool definitions

package prereq

// Tool represents a prerequisite tool
type Tool struct {
	Name         string // Tool name
	Command      string // Command to check existence
	VersionArgs  []string
	InstallGuide string // Installation instructions
}

// DefaultTools returns the tools the exec backend may shell out to
func DefaultTools() map[string]*Tool {
	return map[string]*Tool{
		"git": {
			Name:        "git",
			Command:     "git",
			VersionArgs: []string{"--version"},
			InstallGuide: `Install git:
  macOS:   brew install git
  Ubuntu:  sudo apt install git
  Fedora:  sudo dnf install git
  Windows: https://git-scm.com/download/win`,
		},
		"ssh": {
			Name:        "ssh",
			Command:     "ssh",
			VersionArgs: []string{"-V"},
			InstallGuide: `Install an OpenSSH client:
  macOS:   included with the system
  Ubuntu:  sudo apt install openssh-client
  Fedora:  sudo dnf install openssh-clients
  Windows: Settings > Apps > Optional features > OpenSSH Client`,
		},
	}
}

// RequiredTools returns the tool names needed for a backend and auth method.
// The native backend speaks git and ssh itself.
func RequiredTools(backend, authMethod string) []string {
	if backend != "exec" {
		return nil
	}
	switch authMethod {
	case "agent", "key":
		return []string{"git", "ssh"}
	default:
		return []string{"git"}
	}
}

// CheckResult contains the result of checking a tool
type CheckResult struct {
	Name    string // Tool name
	Found   bool   // Whether tool was found
	Version string // Detected version (if found)
	Path    string // Path to tool (if found)
}

// CheckSummary contains results for all checks
type CheckSummary struct {
	Results      []CheckResult
	AllFound     bool
	MissingTools []string
}

// NewCheckSummary creates a new check summary
func NewCheckSummary() *CheckSummary {
	return &CheckSummary{
		Results:      []CheckResult{},
		AllFound:     true,
		MissingTools: []string{},
	}
}

// AddResult adds a check result to the summary
func (s *CheckSummary) AddResult(result CheckResult) {
	s.Results = append(s.Results, result)
	if !result.Found {
		s.AllFound = false
		s.MissingTools = append(s.MissingTools, result.Name)
	}
}
