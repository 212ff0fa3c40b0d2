package compass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Speaker reads a line of text aloud. Implementations hand the text to
// whatever synthesis backend is available; the daemon never synthesizes
// audio itself.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// NopSpeaker discards readouts. It is the default when no speech command
// is configured.
type NopSpeaker struct{}

// Speak logs the text at debug level and returns nil.
func (NopSpeaker) Speak(_ context.Context, text string) error {
	log.Debug().Str("text", text).Msg("Speech sink not configured, readout dropped")
	return nil
}

// ExecSpeaker pipes text to an external text-to-speech command, such as
// espeak, via stdin.
type ExecSpeaker struct {
	Command string
	Args    []string
}

// Speak runs the configured command with the text on stdin.
func (s ExecSpeaker) Speak(ctx context.Context, text string) error {
	if s.Command == "" {
		return errors.New("compass: no speech command configured")
	}

	cmd := exec.CommandContext(ctx, s.Command, s.Args...)
	cmd.Stdin = strings.NewReader(text)

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("speech command %q failed: %w: %s", s.Command, err, bytes.TrimSpace(out))
	}

	return nil
}
