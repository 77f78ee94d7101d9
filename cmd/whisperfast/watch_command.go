package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magnusua/WhisperFastGUI/internal/engine"
	"github.com/magnusua/WhisperFastGUI/internal/logging"
	"github.com/magnusua/WhisperFastGUI/internal/pipeline"
	"github.com/magnusua/WhisperFastGUI/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a folder and transcribe new media as it arrives",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.currentSettings()
			if err != nil {
				return err
			}
			dir := settings.WatchDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("no watch directory: pass one or set it with `config set watch_dir=...`")
			}

			store, err := ctx.queueStore(cmd.Context())
			if err != nil {
				return err
			}

			lock, err := ctx.acquireProcessLock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			manager := engine.NewManager("", ctx.log())
			defer manager.Unload()

			p := buildPipeline(ctx, store, manager, settings, assumeYes)
			logger := ctx.log()

			handler := func(hctx context.Context, path string) error {
				result := store.AddFiles(hctx, []string{path})
				if result.Added == 0 {
					return nil
				}
				logger.Info("queued watched file",
					logging.String(logging.FieldJobPath, path))
				_, err := p.Run(hctx, pipeline.ModeSingle, store.Len()-1)
				return err
			}

			w := watcher.New(dir, handler, logger, watcher.Options{})
			if err := w.Start(cmd.Context()); err != nil {
				return err
			}
			defer w.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", dir)
			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Answer prompts with yes")
	return cmd
}
