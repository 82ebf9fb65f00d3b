package cli

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newJoinCmd() *cobra.Command {
	var (
		rejoin   bool
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "join <name>",
		Short: "Join a lobby as a player",
		Long: `Connect to a lobby over WebSocket, register under the given name and
stream every frame the server sends.

Each line typed on stdin is sent as a frame of the form "op [json]":
  start
  ingame {"turn": 2}
  quit

Use --rejoin to reclaim a name after a dropped connection. Press Ctrl+C
to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := json.Marshal(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := withOptionalTimeout(ctx, duration)
			defer cancel()

			conn, err := client.Dial(ctx, cfg.Lobby)
			if err != nil {
				return err
			}

			out := outputFor(cmd)
			s := newSession(conn, out)

			op := "register"
			if rejoin {
				op = "reconnect"
			}
			if err := s.send(op, name); err != nil {
				_ = conn.Close()
				return err
			}

			if cfg.Verbose {
				out.PrintMessage("Connected; type frames as \"op [json]\", Ctrl+C to leave")
			}
			return s.run(ctx, cmd.InOrStdin())
		},
	}

	cmd.Flags().BoolVar(&rejoin, "rejoin", false, "Reconnect under a previously registered name")
	cmd.Flags().DurationVar(&duration, "for", 0, "Disconnect after this long (default: until interrupted)")

	return cmd
}
