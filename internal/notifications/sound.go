package notifications

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"time"
)

// Sounds shipped with common desktop environments, tried in order.
var linuxSounds = []string{
	"/usr/share/sounds/freedesktop/stereo/complete.oga",
	"/usr/share/sounds/freedesktop/stereo/bell.oga",
}

// PlayFinishSound plays the system completion chime. Failures are
// ignored: a machine without an audio player just stays quiet.
func PlayFinishSound(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch runtime.GOOS {
	case "darwin":
		exec.CommandContext(ctx, "afplay", "/System/Library/Sounds/Glass.aiff").Run()
	default:
		for _, sound := range linuxSounds {
			if _, err := os.Stat(sound); err != nil {
				continue
			}
			if player, err := exec.LookPath("paplay"); err == nil {
				exec.CommandContext(ctx, player, sound).Run()
				return
			}
			if player, err := exec.LookPath("aplay"); err == nil {
				exec.CommandContext(ctx, player, sound).Run()
				return
			}
			return
		}
	}
}
