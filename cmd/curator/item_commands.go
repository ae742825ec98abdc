package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/ipc"
)

func newNoteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "note <id> [text...]",
		Short: "Set or clear the operator note for an item",
		Long:  "Set the operator note used to steer generation or posted verbatim by `curator post`. With no text the note is cleared.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				text := strings.Join(args[1:], " ")
				if err := client.SetNote(args[0], text); err != nil {
					return err
				}
				if strings.TrimSpace(text) == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared note for %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Noted %s\n", args[0])
				}
				return nil
			})
		},
	}
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text...>",
		Short: "Replace the draft reply text of a ready item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.SetReply(args[0], strings.Join(args[1:], " ")); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated draft for %s\n", args[0])
				return nil
			})
		},
	}
}

func newExpandCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <id>",
		Short: "Toggle detail expansion for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				expanded, err := client.ToggleExpand(args[0])
				if err != nil {
					return err
				}
				if expanded {
					fmt.Fprintf(cmd.OutOrStdout(), "Expanded %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Collapsed %s\n", args[0])
				}
				return nil
			})
		},
	}
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <id>",
		Short: "Generate a reply draft for an item",
		Long:  "Ask the suggestion server to draft a reply. The operator note, if set, is forwarded to steer the draft.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Generate(args[0])
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if strings.TrimSpace(resp.Reply) == "" {
					fmt.Fprintf(stdout, "Draft for %s is no longer available\n", args[0])
					return nil
				}
				fmt.Fprintf(stdout, "Draft for %s:\n%s\n", args[0], indentBlock(resp.Reply))
				return nil
			})
		},
	}
}
