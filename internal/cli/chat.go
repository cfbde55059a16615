package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/gamecenter/minesweeper/internal/api/request"
	"github.com/gamecenter/minesweeper/internal/api/response"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Lobby chat commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "send <code> <text>...",
		Short: "Post a chat message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.ChatMessage

			req := request.ChatRequest{Text: strings.Join(args[1:], " ")}
			if err := client.Post(lobbyPath(args[0], "chat"), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "history <code>",
		Short: "Show recent chat messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.ChatHistory

			if err := client.Get(lobbyPath(args[0], "chat"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	})

	return cmd
}
