package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"curator/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				for _, line := range renderSectionHeader("Session", colorize) {
					fmt.Fprintln(stdout, line)
				}
				runningKind := statusOK
				if !status.Running {
					runningKind = statusError
				}
				fmt.Fprintln(stdout, renderStatusLine("Daemon", runningKind, fmt.Sprintf("running=%s pid=%d", yesNo(status.Running), status.PID), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Socket", statusInfo, status.SocketPath, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Priority forum", statusInfo, status.PriorityForum, colorize))
				if status.LastRefresh != "" {
					fmt.Fprintln(stdout, renderStatusLine("Last refresh", statusOK, status.LastRefresh, colorize))
				} else {
					fmt.Fprintln(stdout, renderStatusLine("Last refresh", statusWarn, "never", colorize))
				}
				if status.LastError != "" {
					fmt.Fprintln(stdout, renderStatusLine("Last error", statusError, status.LastError, colorize))
				}

				fmt.Fprintln(stdout)
				for _, line := range renderSectionHeader("Queue", colorize) {
					fmt.Fprintln(stdout, line)
				}
				if status.ItemCount == 0 {
					fmt.Fprintln(stdout, "Queue is empty")
					return nil
				}

				states := make([]string, 0, len(status.DraftStats))
				for state := range status.DraftStats {
					states = append(states, state)
				}
				sort.Strings(states)
				rows := make([][]string, 0, len(states)+1)
				for _, state := range states {
					rows = append(rows, []string{state, fmt.Sprintf("%d", status.DraftStats[state])})
				}
				rows = append(rows, []string{"total", fmt.Sprintf("%d", status.ItemCount)})
				fmt.Fprintln(stdout, renderTable([]string{"Draft", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}
