package cli

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "send <op> [json]",
		Short: "Send a single frame on a fresh connection",
		Long: `Open a connection to the lobby, send one {"op","data"} frame, print
whatever the server replies within --wait and disconnect.

The connection is not registered, so this is mainly useful for probing
how the server answers unknown or malformed operations.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data json.RawMessage
			if len(args) == 2 {
				data = json.RawMessage(args[1])
			}
			// Validate before dialing so a typo never reaches the server
			if _, err := encodeFrame(args[0], data); err != nil {
				return err
			}

			ctx, cancel := withOptionalTimeout(cmd.Context(), wait)
			defer cancel()

			conn, err := client.Dial(ctx, cfg.Lobby)
			if err != nil {
				return err
			}

			s := newSession(conn, outputFor(cmd))
			if err := s.send(args[0], data); err != nil {
				_ = conn.Close()
				return err
			}
			return s.run(ctx, nil)
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", time.Second, "How long to wait for replies")

	return cmd
}
