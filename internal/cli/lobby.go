package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gamecenter/minesweeper/internal/api/request"
	"github.com/gamecenter/minesweeper/internal/api/response"
)

func newLobbyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lobby",
		Short: "Lobby management commands",
	}

	cmd.AddCommand(newLobbyCreateCmd())
	cmd.AddCommand(newLobbyGetCmd())
	cmd.AddCommand(newLobbyJoinCmd())
	cmd.AddCommand(newLobbyLeaveCmd())
	cmd.AddCommand(newLobbySettingsCmd())
	cmd.AddCommand(newLobbyRoleCmd())
	cmd.AddCommand(newLobbyTransferHostCmd())

	return cmd
}

func lobbyPath(code string, parts ...string) string {
	path := "/api/v1/lobbies/" + strings.ToUpper(code)
	for _, p := range parts {
		path += "/" + p
	}
	return path
}

// printLobby runs a lobby request and prints the lobby it returns
func printLobby(cmd *cobra.Command, do func(result *response.Lobby) error) error {
	var result response.Lobby
	if err := do(&result); err != nil {
		return err
	}
	output(cmd).Print(result)
	return nil
}

func newLobbyCreateCmd() *cobra.Command {
	var settings settingsFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new lobby",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLobby(cmd, func(result *response.Lobby) error {
				return client.Post("/api/v1/lobbies", request.CreateLobbyRequest{Settings: settings.request()}, result)
			})
		},
	}

	addSettingsFlags(cmd, &settings)

	return cmd
}

func newLobbyGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get lobby details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLobby(cmd, func(result *response.Lobby) error {
				return client.Get(lobbyPath(args[0]), result)
			})
		},
	}
}

func newLobbyJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code>",
		Short: "Join a lobby",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLobby(cmd, func(result *response.Lobby) error {
				return client.Post(lobbyPath(args[0], "join"), nil, result)
			})
		},
	}
}

func newLobbyLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <code>",
		Short: "Leave a lobby",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post(lobbyPath(args[0], "leave"), nil, nil); err != nil {
				return err
			}

			output(cmd).PrintMessage(fmt.Sprintf("Left lobby %s", strings.ToUpper(args[0])))
			return nil
		},
	}
}

func newLobbySettingsCmd() *cobra.Command {
	var settings settingsFlags

	cmd := &cobra.Command{
		Use:   "settings <code>",
		Short: "Change the lobby's board settings (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := settings.request()
			if req == nil {
				return errors.New("give --difficulty or --width, --height and --mines")
			}
			return printLobby(cmd, func(result *response.Lobby) error {
				return client.Patch(lobbyPath(args[0], "settings"), req, result)
			})
		},
	}

	addSettingsFlags(cmd, &settings)

	return cmd
}

func newLobbyRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "role <code> <player_id> <player|spectator>",
		Short: "Set a member's role",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLobby(cmd, func(result *response.Lobby) error {
				return client.Patch(lobbyPath(args[0], "members", args[1], "role"), request.SetRoleRequest{Role: args[2]}, result)
			})
		},
	}
}

func newLobbyTransferHostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer-host <code> <player_id>",
		Short: "Make another member the host",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLobby(cmd, func(result *response.Lobby) error {
				return client.Post(lobbyPath(args[0], "transfer-host"), request.TransferHostRequest{NewHostID: args[1]}, result)
			})
		},
	}
}
