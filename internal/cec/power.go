package cec

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"k8s.io/klog/v2"
)

// send runs one cec-client command in single-command mode.
func send(ctx context.Context, command string) error {
	cmd := exec.CommandContext(ctx, "cec-client", "-s", "-d", "1")
	cmd.Stdin = strings.NewReader(command + "\n")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("cec-client %q: %w: %s", command, err, strings.TrimSpace(string(out)))
	}
	klog.V(1).Infof("cec: sent %q", command)
	return nil
}

// PowerOnTV attempts to turn the TV on by sending "on 0" over CEC.
func PowerOnTV(ctx context.Context) error {
	return send(ctx, "on 0")
}

// SwitchToHDMI broadcasts an Active Source frame for HDMI input 1 to 4.
func SwitchToHDMI(ctx context.Context, input int) error {
	frame, err := activeSource(input)
	if err != nil {
		return err
	}
	return send(ctx, frame)
}

// activeSource builds the "tx" command announcing physical address N.0.0.0.
func activeSource(input int) (string, error) {
	if input < 1 || input > 4 {
		return "", fmt.Errorf("hdmi input %d out of range", input)
	}
	return fmt.Sprintf("tx 1F:82:%d0:00", input), nil
}
