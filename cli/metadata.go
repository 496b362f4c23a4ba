package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Metadata describes the CLI for hosts that embed pyhost and want to build
// their own command palette from it.
type Metadata struct {
	SchemaVersion string            `json:"schemaVersion"`
	Name          string            `json:"name"`
	Version       string            `json:"version"`
	Commands      []CommandMetadata `json:"commands"`
}

// CommandMetadata describes a single command.
type CommandMetadata struct {
	Name        []string          `json:"name"`
	Short       string            `json:"short"`
	Long        string            `json:"long,omitempty"`
	Usage       string            `json:"usage,omitempty"`
	Flags       []FlagMetadata    `json:"flags,omitempty"`
	Subcommands []CommandMetadata `json:"subcommands,omitempty"`
	Aliases     []string          `json:"aliases,omitempty"`
}

// FlagMetadata describes a flag for a command.
type FlagMetadata struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
}

// GenerateMetadata introspects a cobra command tree.
func GenerateMetadata(name, version string, root *cobra.Command) *Metadata {
	return &Metadata{
		SchemaVersion: "1.0",
		Name:          name,
		Version:       version,
		Commands:      generateCommands(root),
	}
}

func newMetadataCommand(name, version string) *cobra.Command {
	return &cobra.Command{
		Use:    "metadata",
		Short:  "Print the command tree as JSON",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(GenerateMetadata(name, version, cmd.Root()), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal metadata: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func generateCommands(cmd *cobra.Command) []CommandMetadata {
	var commands []CommandMetadata
	for _, child := range cmd.Commands() {
		if child.Hidden || child.Name() == "help" || child.Name() == "completion" {
			continue
		}
		commands = append(commands, generateCommand(child))
	}
	return commands
}

func generateCommand(cmd *cobra.Command) CommandMetadata {
	meta := CommandMetadata{
		Name:    commandPath(cmd),
		Short:   cmd.Short,
		Long:    cmd.Long,
		Usage:   cmd.UseLine(),
		Aliases: cmd.Aliases,
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		meta.Flags = append(meta.Flags, FlagMetadata{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Description: f.Usage,
			Type:        f.Value.Type(),
			Default:     f.DefValue,
		})
	})

	meta.Subcommands = generateCommands(cmd)
	return meta
}

// commandPath returns the command names below the root.
func commandPath(cmd *cobra.Command) []string {
	if cmd.HasParent() && cmd.Parent().HasParent() {
		return append(commandPath(cmd.Parent()), cmd.Name())
	}
	return []string{cmd.Name()}
}
