package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/gamecenter/minesweeper/internal/api/request"
	"github.com/gamecenter/minesweeper/internal/api/response"
)

func newBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Manage bot players (host only)",
	}

	cmd.AddCommand(newBotAddCmd())
	cmd.AddCommand(newBotRemoveCmd())
	cmd.AddCommand(newBotPlayCmd())

	return cmd
}

func newBotAddCmd() *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "add <code>",
		Short: "Add a bot player to the lobby",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLobby(cmd, func(result *response.Lobby) error {
				return client.Post(lobbyPath(args[0], "bots"), request.AddBotRequest{Strategy: strategy}, result)
			})
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "Bot strategy: logic, random (default logic)")

	return cmd
}

func newBotRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <code> <player_id>",
		Short: "Remove a bot player from the lobby",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLobby(cmd, func(result *response.Lobby) error {
				return client.Do(http.MethodDelete, lobbyPath(args[0], "bots", args[1]), nil, result)
			})
		},
	}
}

func newBotPlayCmd() *cobra.Command {
	var settings settingsFlags

	cmd := &cobra.Command{
		Use:   "play <code> <player_id>",
		Short: "Start a bot's board and let it play to the end",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.BotGameResponse

			req := request.PlayBotRequest{Settings: settings.request()}
			if err := client.Post(lobbyPath(args[0], "bots", args[1], "game"), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	addSettingsFlags(cmd, &settings)

	return cmd
}
