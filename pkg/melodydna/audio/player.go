package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/himanishpuri/MelodyDNA/pkg/models"
	"github.com/himanishpuri/MelodyDNA/pkg/utils"
)

const (
	DefaultPlayer = "ffplay"
	// EnvPlayer overrides DefaultPlayer for NewPlayer.
	EnvPlayer = "MELODY_PLAYER"
)

var ffplayArgs = []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}

// Player renders a melody to a temporary WAV file and hands it to an external program.
type Player struct {
	Command string
	// Args come before the WAV path. Nil with the ffplay command means ffplayArgs.
	Args    []string
	TempDir string
	Render  RenderConfig
}

// NewPlayer uses $MELODY_PLAYER, falling back to ffplay.
func NewPlayer() *Player {
	cmd := os.Getenv(EnvPlayer)
	if cmd == "" {
		cmd = DefaultPlayer
	}
	return &Player{Command: cmd, Render: DefaultRenderConfig()}
}

// Play blocks until the player exits. Without a deadline on ctx, the call is bounded by
// the melody length plus a grace period.
func (p *Player) Play(ctx context.Context, m models.Melody) error {
	cfg := p.Render.withDefaults()

	// Bound the call by the melody length plus a grace period
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Length(m)+10*time.Second)
		defer cancel()
	}
	samples := Render(m, cfg)

	dir := p.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := utils.MakeDir(dir); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "melody-*.wav")
	if err != nil {
		return fmt.Errorf("creating temp wav: %w", err)
	}
	wavPath := tmp.Name()
	tmp.Close()
	defer utils.DeleteFile(wavPath)

	if err := WriteWAV(wavPath, samples, cfg.SampleRate); err != nil {
		return err
	}

	command := p.Command
	if command == "" {
		command = DefaultPlayer
	}
	args := p.Args
	if args == nil && filepath.Base(command) == DefaultPlayer {
		args = ffplayArgs
	}

	cmd := exec.CommandContext(ctx, command, append(append([]string(nil), args...), wavPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s failed: %v (%s)", command, err, out)
	}
	return nil
}
