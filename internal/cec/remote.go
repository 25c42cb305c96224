// Package cec turns HDMI-CEC remote buttons into navigation commands and
// wakes the TV.
package cec

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"

	"k8s.io/klog/v2"
)

// Command is a recognized remote button.
type Command int

const (
	Unknown Command = iota
	Left
	Right
	Up
	Down
	Select
	Back
)

func (c Command) String() string {
	switch c {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	case Select:
		return "select"
	case Back:
		return "back"
	}
	return "unknown"
}

// User Control Pressed operands.
var userControl = map[string]Command{
	"00": Select,
	"01": Up,
	"02": Down,
	"03": Left,
	"04": Right,
	"0D": Back,
}

// Traffic lines look like ">> 04:44:03"; 44 is User Control Pressed.
var reUserControlPressed = regexp.MustCompile(`>>\s+([0-9A-Fa-f]{2}):44:([0-9A-Fa-f]{2})`)

// ParseLine extracts a button press from one line of cec-client traffic.
func ParseLine(line string) (Command, bool) {
	m := reUserControlPressed.FindStringSubmatch(line)
	if len(m) != 3 {
		return Unknown, false
	}
	c, ok := userControl[strings.ToUpper(m[2])]
	return c, ok
}

// Scan reads cec-client traffic from r and sends recognized presses to out
// until r ends or ctx is done.
func Scan(ctx context.Context, r io.Reader, out chan<- Command) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		c, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		klog.V(2).Infof("cec: %s", c)
		select {
		case out <- c:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}

// Listen runs cec-client in traffic mode and forwards button presses to out.
// It returns when cec-client exits or ctx is done.
func Listen(ctx context.Context, out chan<- Command) error {
	cmd := exec.CommandContext(ctx, "cec-client", "-t", "p", "-d", "8")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("cec-client stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start cec-client: %w", err)
	}
	scanErr := Scan(ctx, stdout, out)
	if err := cmd.Wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("cec-client ended: %w", err)
	}
	return scanErr
}
