package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// parseIndex converts a 1-based position argument into a queue index.
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q: expected a 1-based queue position", arg)
	}
	return n - 1, nil
}

// stdinPrompter asks yes/no questions on the terminal. Outside a TTY
// every question is answered with the configured default.
type stdinPrompter struct {
	interactive  bool
	defaultReply bool
	in           io.Reader
}

func newPrompter(assumeYes bool) stdinPrompter {
	return stdinPrompter{
		interactive:  stdoutIsTTY() && !assumeYes,
		defaultReply: assumeYes,
		in:           os.Stdin,
	}
}

// ConfirmAudioExtract answers no when the context is cancelled while
// waiting, so Ctrl+C during a prompt does not hang the run.
func (p stdinPrompter) ConfirmAudioExtract(ctx context.Context, name string) bool {
	if !p.interactive {
		return p.defaultReply
	}
	fmt.Printf("Export extracted audio for %s? [y/N]: ", name)

	answers := make(chan bool, 1)
	go func() {
		answer, err := bufio.NewReader(p.in).ReadString('\n')
		if err != nil {
			answers <- false
			return
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		answers <- answer == "y" || answer == "yes"
	}()

	select {
	case <-ctx.Done():
		fmt.Println()
		return false
	case answer := <-answers:
		return answer
	}
}
