package game

import (
	"encoding/json"
	"regexp"
	"unicode/utf8"
)

// ClientMessage is the inbound wire envelope.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type createGamePayload struct {
	PlayerName  string `json:"playerName"`
	PlayerCount int    `json:"playerCount"`
}

type joinGamePayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type reconnectPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerId string `json:"playerId"`
}

type confirmRoomPayload struct {
	Room int `json:"room"`
}

type targetPayload struct {
	TargetId string `json:"targetId"`
}

type swordsmithConfirmPayload struct {
	AssassinId string `json:"assassinId"`
}

type declareVictoryPayload struct {
	Winner Team `json:"winner"`
}

var roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func validRoomCode(code string) bool {
	return roomCodePattern.MatchString(code)
}

func validPlayerName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 1 && n <= 20
}

func validPlayerCount(count int) bool {
	return count >= MinPlayers && count <= MaxPlayers && count%2 == 0
}
