package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/ipc"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the review queue in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueList()
				if err != nil {
					return err
				}
				if len(resp.Items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(resp.Items))
				for _, entry := range resp.Items {
					forum := entry.Subreddit
					if entry.Priority {
						forum = "*" + forum
					}
					rows = append(rows, []string{
						entry.ID,
						forum,
						truncate(entry.Title, 56),
						draftLabel(entry),
						truncate(entry.Note, 24),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Forum", "Title", "Draft", "Note"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show full details for one queue entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueShow(args[0])
				if err != nil {
					return err
				}
				printEntry(cmd, resp.Entry)
				return nil
			})
		},
	}
}

func newRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch the queue from the suggestion server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Refresh()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queue refreshed (%d items)\n", resp.ItemCount)
				return nil
			})
		},
	}
}

func printEntry(cmd *cobra.Command, entry ipc.QueueEntry) {
	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "ID:        %s\n", entry.ID)
	fmt.Fprintf(stdout, "Forum:     %s", entry.Subreddit)
	if entry.Priority {
		fmt.Fprint(stdout, " (priority)")
	}
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Title:     %s\n", entry.Title)
	fmt.Fprintf(stdout, "URL:       %s\n", entry.URL)
	if entry.Author != "" {
		fmt.Fprintf(stdout, "Author:    %s\n", entry.Author)
	}
	if created := formatUnixTime(entry.CreatedUTC); created != "" {
		fmt.Fprintf(stdout, "Posted:    %s\n", created)
	}
	fmt.Fprintf(stdout, "Draft:     %s\n", entry.DraftState)
	fmt.Fprintf(stdout, "Expanded:  %s\n", yesNo(entry.Expanded))
	if len(entry.ImageURLs) > 0 {
		fmt.Fprintln(stdout, "Images:")
		for _, url := range entry.ImageURLs {
			fmt.Fprintf(stdout, "  %s\n", url)
		}
	}
	if strings.TrimSpace(entry.Selftext) != "" {
		fmt.Fprintln(stdout, "\nBody:")
		fmt.Fprintln(stdout, indentBlock(entry.Selftext))
	}
	if strings.TrimSpace(entry.Note) != "" {
		fmt.Fprintln(stdout, "\nNote:")
		fmt.Fprintln(stdout, indentBlock(entry.Note))
	}
	if strings.TrimSpace(entry.Reply) != "" {
		fmt.Fprintln(stdout, "\nReply draft:")
		fmt.Fprintln(stdout, indentBlock(entry.Reply))
	}
}

func draftLabel(entry ipc.QueueEntry) string {
	switch entry.DraftState {
	case "ready":
		return "ready"
	case "generating":
		return "generating"
	default:
		return "-"
	}
}

func indentBlock(value string) string {
	lines := strings.Split(strings.TrimRight(value, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
