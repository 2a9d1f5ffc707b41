package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/cmlabs-hris/workforce-sync-go/internal/app"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/source"
	"github.com/spf13/cobra"
)

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect and clear import logs",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List import logs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				logs, err := a.SourceService.ListImportLogs(cmd.Context(), limit)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "STARTED\tSOURCE\tSTATUS\tTOTAL\tIMPORTED\tFAILED\tERROR")
				for _, l := range logs {
					errMsg := ""
					if l.ErrorMessage != nil {
						errMsg = *l.ErrorMessage
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
						l.StartedAt, l.SourceName, l.Status, l.TotalCount, l.ImportedCount, l.FailedCount, errMsg)
				}
				return tw.Flush()
			})
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", source.DefaultLogPageSize, fmt.Sprintf("Number of logs to show (max %d)", source.MaxLogPageSize))

	var confirm bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every import log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("refusing to clear import logs without --yes")
			}
			return withApp(func(a *app.App) error {
				deleted, err := a.SourceService.ClearImportLogs(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d import logs\n", deleted)
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVar(&confirm, "yes", false, "Confirm deletion")

	cmd.AddCommand(listCmd, clearCmd)
	return cmd
}
