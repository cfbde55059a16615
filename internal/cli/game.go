package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gamecenter/minesweeper/internal/api/request"
	"github.com/gamecenter/minesweeper/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Play your own board and watch others",
	}

	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameMoveCmd("reveal", "Open a cell"))
	cmd.AddCommand(newGameMoveCmd("flag", "Toggle a flag on a cell"))
	cmd.AddCommand(newGameAbandonCmd())
	cmd.AddCommand(newGameWatchCmd())

	return cmd
}

func newGameStartCmd() *cobra.Command {
	var settings settingsFlags

	cmd := &cobra.Command{
		Use:   "start <code>",
		Short: "Start or restart your game in the lobby",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Game

			req := request.StartGameRequest{Settings: settings.request()}
			if err := client.Post(lobbyPath(args[0], "game"), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	addSettingsFlags(cmd, &settings)

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Show your board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Game

			if err := client.Get(lobbyPath(args[0], "game"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameMoveCmd(kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " <code> <row> <col>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid row %q", args[1])
			}
			col, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid column %q", args[2])
			}

			var result response.MoveResponse

			req := request.CellRequest{Row: row, Col: col}
			if err := client.Post(lobbyPath(args[0], "game", kind), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameAbandonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abandon <code>",
		Short: "Give up your current game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(lobbyPath(args[0], "game")); err != nil {
				return err
			}

			output(cmd).PrintMessage("Game abandoned")
			return nil
		},
	}
}

func newGameWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <code> <player_id>",
		Short: "Show another member's board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Game

			if err := client.Get(lobbyPath(args[0], "games", args[1]), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
