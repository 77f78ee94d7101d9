package main

import (
	"fmt"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/magnusua/WhisperFastGUI/internal/config"
	"github.com/magnusua/WhisperFastGUI/internal/engine"
	"github.com/magnusua/WhisperFastGUI/internal/language"
)

func newEngineCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engine",
		Short: "Inspect or release the transcription engine",
	}
	cmd.AddCommand(newEngineInfoCommand(ctx), newEngineUnloadCommand(ctx))
	return cmd
}

func newEngineInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the configured model and detected hardware",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.currentSettings()
			if err != nil {
				return err
			}
			capability := engine.DetectCapability(cmd.Context())
			device, compute := engine.ResolveDevice(settings.DeviceMode, capability)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Model:        %s\n", settings.WhisperModel)
			fmt.Fprintf(out, "Known models: %s\n", strings.Join(config.Models(), ", "))
			langName := language.DisplayName(settings.Language)
			fmt.Fprintf(out, "Language:     %s\n", langName)
			fmt.Fprintf(out, "Device mode:  %s\n", settings.DeviceMode)
			fmt.Fprintf(out, "GPU:          %s\n", describeGPU(capability))
			fmt.Fprintf(out, "Resolved:     %s (%s)\n", device, compute)
			fmt.Fprintf(out, "Active run:   %s\n", yesNo(processLockHeld(ctx)))
			return nil
		},
	}
}

func newEngineUnloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unload",
		Short: "Release any resident model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensure(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if processLockHeld(ctx) {
				fmt.Fprintln(out, "A run or watch is active; its engine is released when it finishes.")
				return nil
			}
			fmt.Fprintln(out, "No engine is resident. Models load per run and are released on exit.")
			return nil
		},
	}
}

func describeGPU(capability engine.Capability) string {
	if !capability.Available {
		return "not detected"
	}
	return capability.Name
}

// processLockHeld probes the processing lock without keeping it.
func processLockHeld(ctx *commandContext) bool {
	if err := ctx.ensure(); err != nil {
		return false
	}
	lock := flock.New(ctx.store.LockPath())
	ok, err := lock.TryLock()
	if err != nil || !ok {
		return true
	}
	lock.Unlock()
	return false
}
