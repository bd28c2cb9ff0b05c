// Package judge asks a person which of two melodies they prefer.
package judge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/search"
	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

// Player plays a melody before the listener answers. audio.Player satisfies it.
type Player interface {
	Play(ctx context.Context, m models.Melody) error
}

// Console reads answers line by line from In and writes prompts to Out.
type Console struct {
	In   io.Reader
	Out  io.Writer
	Play Player

	reader *bufio.Reader
}

var _ search.Judge = (*Console)(nil)

// NewConsole wires a judge to stdin and stdout.
func NewConsole(play Player) *Console {
	return &Console{In: os.Stdin, Out: os.Stdout, Play: play}
}

// Interactive reports whether f is attached to a terminal.
func Interactive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Prefer returns 0 when the listener answers 1 and 1 when they answer 2. Any other answer
// yields -1, which the tournament treats as an invalid index and asks again.
func (c *Console) Prefer(a, b models.Melody) (int, error) {
	if c.reader == nil {
		c.reader = bufio.NewReader(c.In)
	}

	fmt.Fprintf(c.Out, "\nMelody 1: %s\n", a)
	c.play(a)
	fmt.Fprintf(c.Out, "Melody 2: %s\n", b)
	c.play(b)
	fmt.Fprint(c.Out, "Which do you prefer? [1/2]: ")

	line, err := c.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return 0, fmt.Errorf("reading answer: %w", err)
	}

	switch strings.TrimSpace(line) {
	case "1":
		return 0, nil
	case "2":
		return 1, nil
	}
	fmt.Fprintf(c.Out, "Please answer 1 or 2, not %q\n", strings.TrimSpace(line))
	return -1, nil
}

func (c *Console) play(m models.Melody) {
	if c.Play == nil {
		return
	}
	if err := c.Play.Play(context.Background(), m); err != nil {
		fmt.Fprintf(c.Out, "(playback failed: %v)\n", err)
	}
}
