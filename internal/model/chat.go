package model

import "time"

// MaxChatMessageLength is the largest chat message accepted, in runes
const MaxChatMessageLength = 500

// ChatMessage is a message posted to a lobby's chat
type ChatMessage struct {
	ID          string    `json:"id"`
	LobbyCode   LobbyCode `json:"lobby_code"`
	PlayerID    PlayerID  `json:"player_id"`
	DisplayName string    `json:"display_name"`
	Text        string    `json:"text"`
	SentAt      time.Time `json:"sent_at"`
}
