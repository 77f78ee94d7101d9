package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/magnusua/WhisperFastGUI/internal/queue"
	"github.com/magnusua/WhisperFastGUI/internal/timecode"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and mutate the transcription queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return newQueueListCommand(ctx).RunE(cmd, args)
		},
	}

	cmd.AddCommand(newQueueListCommand(ctx))
	cmd.AddCommand(newQueueRemoveCommand(ctx))
	cmd.AddCommand(newQueueReorderCommand(ctx))
	cmd.AddCommand(newQueueEditCommand(ctx))
	cmd.AddCommand(newQueueClearCommand(ctx))
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.queueStore(cmd.Context())
			if err != nil {
				return err
			}
			jobs := store.Jobs()
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}

			rows := make([][]string, 0, len(jobs))
			for i, job := range jobs {
				status := "pending"
				if job.Processed {
					status = "done"
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					filepath.Base(job.Path),
					job.Start,
					job.End,
					status,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				renderTable(
					[]string{"#", "File", "Start", "End", "Status"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
			return nil
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <position>",
		Short: "Remove one job from the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.queueStore(cmd.Context())
			if err != nil {
				return err
			}
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			job, err := store.Job(index)
			if err != nil {
				return describeIndexError(err, store)
			}
			if err := store.Remove(index); err != nil {
				return describeIndexError(err, store)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", filepath.Base(job.Path))
			return nil
		},
	}
}

func newQueueReorderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <from> <to>",
		Short: "Move a job to a new position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.queueStore(cmd.Context())
			if err != nil {
				return err
			}
			from, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			to, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			if err := store.Reorder(from, to); err != nil {
				return describeIndexError(err, store)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved job %d to position %d\n", from+1, to+1)
			return nil
		},
	}
}

func newQueueEditCommand(ctx *commandContext) *cobra.Command {
	var start, split1, split2, end string

	cmd := &cobra.Command{
		Use:   "edit <position>",
		Short: "Edit a job's transcription time range",
		Long: "Edit a job's time range. Timestamps use the HH:MM:SS,mmm form. " +
			"Blank --start/--end keep the current value; splits are overwritten as given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.queueStore(cmd.Context())
			if err != nil {
				return err
			}
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			for _, stamp := range []string{start, split1, split2, end} {
				if stamp == "" {
					continue
				}
				if _, ok := timecode.Parse(stamp); !ok {
					return fmt.Errorf("invalid timestamp %q: expected HH:MM:SS or HH:MM:SS,mmm", stamp)
				}
			}
			if err := store.UpdateRange(index, start, split1, split2, end); err != nil {
				return describeIndexError(err, store)
			}
			job, _ := store.Job(index)
			fmt.Fprintf(cmd.OutOrStdout(), "Range for %s: %s .. %s\n",
				filepath.Base(job.Path), job.Start, job.End)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Range start timestamp")
	cmd.Flags().StringVar(&split1, "split1", "", "First interior split timestamp")
	cmd.Flags().StringVar(&split2, "split2", "", "Second interior split timestamp")
	cmd.Flags().StringVar(&end, "end", "", "Range end timestamp")
	return cmd
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every job from the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.queueStore(cmd.Context())
			if err != nil {
				return err
			}
			count := store.Len()
			store.Clear()
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d job(s)\n", count)
			return nil
		},
	}
}

func describeIndexError(err error, store *queue.Store) error {
	if errors.Is(err, queue.ErrInvalidIndex) {
		return fmt.Errorf("position out of range: queue has %d job(s)", store.Len())
	}
	return err
}
