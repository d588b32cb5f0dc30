/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import "github.com/charmbracelet/lipgloss"

// Terminal styles for command output; plain text when stdout is not a tty
var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)
