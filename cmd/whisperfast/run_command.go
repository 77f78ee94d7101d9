package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magnusua/WhisperFastGUI/internal/config"
	"github.com/magnusua/WhisperFastGUI/internal/engine"
	"github.com/magnusua/WhisperFastGUI/internal/media"
	"github.com/magnusua/WhisperFastGUI/internal/notifications"
	"github.com/magnusua/WhisperFastGUI/internal/output"
	"github.com/magnusua/WhisperFastGUI/internal/pipeline"
	"github.com/magnusua/WhisperFastGUI/internal/queue"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var unprocessed bool
	var index int
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Transcribe queued jobs",
		Long: "Transcribe queued jobs. Without flags, already-processed jobs are " +
			"skipped when any exist; otherwise the whole queue runs.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && unprocessed {
				return fmt.Errorf("--all and --unprocessed are mutually exclusive")
			}

			store, err := ctx.queueStore(cmd.Context())
			if err != nil {
				return err
			}
			settings, err := ctx.currentSettings()
			if err != nil {
				return err
			}

			lock, err := ctx.acquireProcessLock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			mode := pickMode(store, all, unprocessed, cmd.Flags().Changed("index"))
			if mode == pipeline.ModeUnprocessed && !unprocessed && allProcessed(store) {
				fmt.Fprintf(cmd.OutOrStdout(),
					"All %d job(s) are already processed; pass --all to run them again\n",
					store.Len())
				return nil
			}

			manager := engine.NewManager("", ctx.log())
			defer manager.Unload()

			p := buildPipeline(ctx, store, manager, settings, assumeYes)

			result, err := p.Run(cmd.Context(), mode, index-1)
			if err != nil {
				return err
			}
			if result.Cancelled {
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled: %d done, %d skipped\n",
					result.Processed, result.Skipped)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done: %d file(s) transcribed\n", result.Processed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Process every job, including already-processed ones")
	cmd.Flags().BoolVar(&unprocessed, "unprocessed", false, "Process only jobs not yet done")
	cmd.Flags().IntVar(&index, "index", 0, "Process the single job at this 1-based position")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Answer prompts with yes")
	return cmd
}

// pickMode resolves the run mode. The default mirrors the original
// behavior: once anything is processed, a plain run means "only new".
func pickMode(store *queue.Store, all, unprocessed, single bool) pipeline.Mode {
	switch {
	case single:
		return pipeline.ModeSingle
	case all:
		return pipeline.ModeAll
	case unprocessed:
		return pipeline.ModeUnprocessed
	}
	for _, job := range store.Jobs() {
		if job.Processed {
			return pipeline.ModeUnprocessed
		}
	}
	return pipeline.ModeAll
}

func allProcessed(store *queue.Store) bool {
	jobs := store.Jobs()
	if len(jobs) == 0 {
		return false
	}
	for _, job := range jobs {
		if !job.Processed {
			return false
		}
	}
	return true
}

func buildPipeline(ctx *commandContext, store *queue.Store, engines pipeline.EngineSource, settings config.Settings, assumeYes bool) *pipeline.Pipeline {
	extractor := media.NewExtractor()
	p := pipeline.New(pipeline.Options{
		Store:    store,
		Engines:  engines,
		Prober:   media.NewProber(),
		Clipper:  extractor,
		Writer:   output.NewWriter(settings.OutputDir, extractor, ctx.log()),
		Notifier: notifications.NewService(settings.NotifyTopic),
		Prompter: newPrompter(assumeYes),
		Settings: settings,
		Logger:   ctx.log(),
	})
	p.OnProgress = progressPrinter()
	return p
}

// progressPrinter renders in-place percentage updates on a TTY and
// stays quiet otherwise; the log stream carries progress either way.
func progressPrinter() func(index int, fraction float64) {
	if !stdoutIsTTY() {
		return nil
	}
	return func(index int, fraction float64) {
		fmt.Printf("\rjob %d: %3.0f%%", index+1, fraction*100)
		if fraction >= 1 {
			fmt.Println()
		}
	}
}
