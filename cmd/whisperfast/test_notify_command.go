package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magnusua/WhisperFastGUI/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test push notification to the configured topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.currentSettings()
			if err != nil {
				return err
			}
			if settings.NotifyTopic == "" {
				return fmt.Errorf("no notify topic configured; set one with `config set notify_topic=...`")
			}
			service := notifications.NewService(settings.NotifyTopic)
			if err := service.TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test notification sent to topic %q\n", settings.NotifyTopic)
			return nil
		},
	}
}
