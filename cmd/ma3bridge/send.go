package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ma3bridge/lib/config"
	"ma3bridge/lib/logging"
	"ma3bridge/lib/ma3"
	"ma3bridge/lib/osc"
)

// sendLinger keeps the socket open briefly so the datagram leaves before
// the process exits.
const sendLinger = 300 * time.Millisecond

func newSendCommand(ctx *commandContext) *cobra.Command {
	var localPort int
	var linger time.Duration

	cmd := &cobra.Command{
		Use:     "send <command...>",
		Short:   "Send one literal command to the console and exit",
		Example: `  ma3bridge send "FaderMaster Page 1.201 At 50"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			line := strings.TrimSpace(strings.Join(args, " "))
			if line == "" {
				return errors.New(`usage: ma3bridge send "FaderMaster Page 1.201 At 50"`)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			client, err := osc.Dial(localPort, cfg.Console.IP, cfg.Console.Port)
			if err != nil {
				return err
			}
			defer client.Close()

			sender := ma3.NewSender(client, cfg.Console.Prefix, logging.Component(logger, "osc"))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sending to %s\n", client.RemoteAddr())
			fmt.Fprintf(out, "OSC %s %q\n", sender.Address(), line)
			sender.Send(line)

			time.Sleep(linger)
			fmt.Fprintln(out, "Done.")
			return nil
		},
	}

	cmd.Flags().IntVar(&localPort, "local-port", config.DefaultSendLocalPort, "Local UDP port to send from (0 picks any)")
	cmd.Flags().DurationVar(&linger, "linger", sendLinger, "Wait before exiting")
	return cmd
}
