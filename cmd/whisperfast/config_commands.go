package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magnusua/WhisperFastGUI/internal/config"
	"github.com/magnusua/WhisperFastGUI/internal/language"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change persisted settings",
	}
	cmd.AddCommand(
		newConfigShowCommand(ctx),
		newConfigSetCommand(ctx),
		newConfigPathCommand(ctx),
	)
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.currentSettings()
			if err != nil {
				return err
			}
			rows := [][]string{
				{"language", settings.Language},
				{"output_dir", settings.OutputDir},
				{"watch_dir", settings.WatchDir},
				{"watch_enabled", strconv.FormatBool(settings.WatchEnabled)},
				{"device_mode", settings.DeviceMode},
				{"play_sound_on_finish", strconv.FormatBool(settings.PlaySoundOnDone)},
				{"save_audio_mp3", strconv.FormatBool(settings.SaveAudio)},
				{"tray_mode", settings.TrayMode},
				{"whisper_model", settings.WhisperModel},
				{"notify_topic", settings.NotifyTopic},
				{"log_level", settings.LogLevel},
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				renderTable(
					[]string{"Key", "Value"},
					rows,
					[]columnAlignment{alignLeft, alignLeft},
				))
			return nil
		},
	}
}

func newConfigSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key>=<value> ...",
		Short: "Change one or more settings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.currentSettings()
			if err != nil {
				return err
			}
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected key=value, got %q", arg)
				}
				if err := applySetting(&settings, strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
					return err
				}
			}
			store, err := ctx.configStore()
			if err != nil {
				return err
			}
			if err := store.Save(settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", store.SettingsPath())
			return nil
		},
	}
}

func newConfigPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.configStore()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.SettingsPath())
			return nil
		},
	}
}

func applySetting(settings *config.Settings, key, value string) error {
	switch key {
	case "language":
		normalized, ok := language.Normalize(value)
		if !ok {
			return fmt.Errorf("unknown language %q", value)
		}
		settings.Language = normalized
	case "output_dir":
		settings.OutputDir = value
	case "watch_dir":
		settings.WatchDir = value
	case "watch_enabled":
		return setBool(&settings.WatchEnabled, key, value)
	case "device_mode":
		mode := strings.ToUpper(value)
		switch mode {
		case config.DeviceAuto, config.DeviceGPU, config.DeviceCPU:
			settings.DeviceMode = mode
		default:
			return fmt.Errorf("device_mode must be one of AUTO, GPU, CPU")
		}
	case "play_sound_on_finish":
		return setBool(&settings.PlaySoundOnDone, key, value)
	case "save_audio_mp3":
		return setBool(&settings.SaveAudio, key, value)
	case "tray_mode":
		settings.TrayMode = value
	case "whisper_model":
		if !config.KnownModel(value) {
			return fmt.Errorf("unknown model %q (known: %s)",
				value, strings.Join(config.Models(), ", "))
		}
		settings.WhisperModel = value
	case "notify_topic":
		settings.NotifyTopic = value
	case "log_level":
		settings.LogLevel = value
	default:
		return fmt.Errorf("unknown setting %q (known: %s)",
			key, strings.Join(settingKeys(), ", "))
	}
	return nil
}

func setBool(target *bool, key, value string) error {
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s expects true or false, got %q", key, value)
	}
	*target = parsed
	return nil
}

func settingKeys() []string {
	keys := []string{
		"language", "output_dir", "watch_dir", "watch_enabled",
		"device_mode", "play_sound_on_finish", "save_audio_mp3",
		"tray_mode", "whisper_model", "notify_topic", "log_level",
	}
	sort.Strings(keys)
	return keys
}
