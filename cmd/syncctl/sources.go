package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/cmlabs-hris/workforce-sync-go/internal/app"
	"github.com/spf13/cobra"
)

func newSourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Inspect registered sources",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sources with their schedule and last sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				sources, err := a.SourceService.List(cmd.Context())
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tKIND\tSTATUS\tSYNC\tINTERVAL\tLAST SYNC")
				for _, s := range sources {
					lastSync := "-"
					if s.LastSyncAt != nil {
						lastSync = *s.LastSyncAt
						if s.LastSyncStatus != nil {
							lastSync += " (" + *s.LastSyncStatus + ")"
						}
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%dh%02dm\t%s\n",
						s.ID, s.Name, s.Kind, s.Status, s.SyncEnabled, s.IntervalHours, s.IntervalMinutes, lastSync)
				}
				return tw.Flush()
			})
		},
	})

	return cmd
}
