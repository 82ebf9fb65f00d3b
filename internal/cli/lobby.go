package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// defaultLobby names the lobby served on the bare /ws endpoint
const defaultLobby = "default"

func newLobbyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lobby",
		Short: "Lobby management commands",
	}

	cmd.AddCommand(newLobbyListCmd())
	cmd.AddCommand(newLobbyCreateCmd())
	cmd.AddCommand(newLobbyGetCmd())

	return cmd
}

func newLobbyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List lobbies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result LobbyList

			if err := client.Get("/api/v1/lobbies", &result); err != nil {
				return err
			}

			outputFor(cmd).Print(result)
			return nil
		},
	}
}

func newLobbyCreateCmd() *cobra.Command {
	var capacity int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new lobby",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if capacity < 0 {
				return fmt.Errorf("--capacity must not be negative")
			}

			req := map[string]int{}
			if capacity > 0 {
				req["capacity"] = capacity
			}

			var result Lobby

			if err := client.Post("/api/v1/lobbies", req, &result); err != nil {
				return err
			}

			outputFor(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&capacity, "capacity", 0, "Players needed to start (default: server default)")

	return cmd
}

func newLobbyGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [code]",
		Short: "Get lobby details",
		Long:  "Get lobby details. Without a code, the --lobby flag or the default lobby is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := cfg.Lobby
			if len(args) == 1 {
				code = args[0]
			}
			if code == "" {
				code = defaultLobby
			}

			var result Lobby

			if err := client.Get("/api/v1/lobbies/"+url.PathEscape(code), &result); err != nil {
				return err
			}

			outputFor(cmd).Print(result)
			return nil
		},
	}
}

func outputFor(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}
