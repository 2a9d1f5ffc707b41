package main

import (
	"fmt"

	"github.com/cmlabs-hris/workforce-sync-go/internal/app"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <source-id>",
		Short: "Run one sync for a source and wait for it to finish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				log, err := a.Sync.RunNow(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "log:      %s\n", log.ID)
				fmt.Fprintf(out, "source:   %s\n", log.SourceName)
				fmt.Fprintf(out, "status:   %s\n", log.Status)
				fmt.Fprintf(out, "total:    %d\n", log.TotalCount)
				fmt.Fprintf(out, "imported: %d\n", log.ImportedCount)
				fmt.Fprintf(out, "failed:   %d\n", log.FailedCount)
				if log.ErrorMessage != nil {
					fmt.Fprintf(out, "error:    %s\n", *log.ErrorMessage)
				}
				return nil
			})
		},
	}
}
