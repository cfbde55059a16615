package redis

import (
	"fmt"

	"github.com/gamecenter/minesweeper/internal/model"
)

// Key prefix for all minesweeper data
const keyPrefix = "mines"

func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey maps a username to its player id
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

func lobbyKey(code model.LobbyCode) string {
	return fmt.Sprintf("%s:lobby:%s", keyPrefix, code)
}

func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// chatKey holds a LIST of JSON chat messages, oldest first
func chatKey(code model.LobbyCode) string {
	return fmt.Sprintf("%s:chat:%s", keyPrefix, code)
}
