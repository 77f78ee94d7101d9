package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/magnusua/WhisperFastGUI/internal/media"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "add <path>...",
		Short: "Add media files or directories to the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.queueStore(cmd.Context())
			if err != nil {
				return err
			}

			var paths []string
			for _, arg := range args {
				info, err := os.Stat(arg)
				if err != nil {
					return fmt.Errorf("stat %s: %w", arg, err)
				}
				if info.IsDir() {
					paths = append(paths, media.ScanDirectory(arg, recursive)...)
				} else {
					paths = append(paths, arg)
				}
			}

			result := store.AddFiles(cmd.Context(), paths)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d file(s)", result.Added)
			if result.Duplicates > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), ", %d duplicate(s) skipped", result.Duplicates)
			}
			if result.Invalid > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), ", %d unsupported/missing skipped", result.Invalid)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Recurse into subdirectories")
	return cmd
}
