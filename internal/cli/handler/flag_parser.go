// Package handler provides flag parsing utilities
package handler

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli"
)

// FlagParser provides common flag extraction patterns
type FlagParser struct {
	cmd *cobra.Command
}

// NewFlagParser creates a new flag parser
func NewFlagParser(cmd *cobra.Command) *FlagParser {
	return &FlagParser{cmd: cmd}
}

// ParseProjectID extracts the project ID from --project or PROJECTHUB_PROJECT
func (p *FlagParser) ParseProjectID() (string, error) {
	projectID, err := cli.GetProjectID(p.cmd)
	if err != nil {
		return "", fmt.Errorf("%w (set one with: eval $(projecthub use project <project-id>))", err)
	}
	return projectID, nil
}

// ParseString extracts a required string flag
func (p *FlagParser) ParseString(flagName string) (string, error) {
	value, err := p.cmd.Flags().GetString(flagName)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s flag: %w", flagName, err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("--%s is required", flagName)
	}
	return value, nil
}

// ParseNonNegativeInt extracts an int flag that must be >= 0
func (p *FlagParser) ParseNonNegativeInt(flagName string) (int, error) {
	value, err := p.cmd.Flags().GetInt(flagName)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s flag: %w", flagName, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("--%s cannot be negative", flagName)
	}
	return value, nil
}

// OutputFormats extracts JSON and Quiet output flags
func (p *FlagParser) OutputFormats() (jsonOutput bool, quietMode bool, err error) {
	jsonOutput, err = p.cmd.Flags().GetBool("json")
	if err != nil {
		return false, false, fmt.Errorf("failed to parse json flag: %w", err)
	}

	quietMode, err = p.cmd.Flags().GetBool("quiet")
	if err != nil {
		return false, false, fmt.Errorf("failed to parse quiet flag: %w", err)
	}

	if jsonOutput && quietMode {
		return false, false, fmt.Errorf("--json and --quiet cannot be combined")
	}
	return jsonOutput, quietMode, nil
}
