package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/electronjoe/deepframe/internal/cec"
)

func newRemoteCmd() *cobra.Command {
	var (
		hdmiInput  int
		powerOn    bool
		powerDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Print TV remote buttons received over HDMI-CEC",
		Long: `Runs cec-client and prints every remote button the viewer would act on.
Useful to check the CEC wiring before starting the viewer.`,
		Example: `  deepframe remote --power-on --hdmi 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if powerOn {
				if err := cec.PowerOnTV(ctx); err != nil {
					klog.Warningf("PowerOnTV failed: %v", err)
				} else if powerDelay > 0 {
					klog.Infof("waiting %s for the TV to wake up", powerDelay)
					select {
					case <-time.After(powerDelay):
					case <-ctx.Done():
						return nil
					}
				}
			}
			if hdmiInput > 0 {
				if err := cec.SwitchToHDMI(ctx, hdmiInput); err != nil {
					klog.Warningf("SwitchToHDMI failed: %v", err)
				}
			}

			commands := make(chan cec.Command, 8)
			done := make(chan error, 1)
			go func() {
				done <- cec.Listen(ctx, commands)
			}()
			out := cmd.OutOrStdout()
			for {
				select {
				case c := <-commands:
					fmt.Fprintf(out, "%s  %s\n", time.Now().Format("15:04:05.000"), c)
				case err := <-done:
					return err
				}
			}
		},
	}

	cmd.Flags().IntVar(&hdmiInput, "hdmi", 0, "HDMI input to switch the TV to first (0 skips)")
	cmd.Flags().BoolVar(&powerOn, "power-on", false, "power the TV on first")
	cmd.Flags().DurationVar(&powerDelay, "power-delay", 10*time.Second, "wait after powering on")
	return cmd
}
