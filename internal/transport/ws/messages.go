package ws

import "github.com/boardhall/lobby-service/internal/notify"

// Типы событий, которые уходят подписчикам
const (
	TypeState = "state" // снапшот комнаты: при подключении и на каждое изменение состава
	TypeError = "error"
)

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func stateMessage(snap notify.RoomSnapshot) Message {
	return Message{Type: TypeState, Payload: snap}
}
