package models

// Message is a pub/sub delivery received by a session.
type Message struct {
	Channel string `json:"channel"`
	Payload string `json:"payload"`
}

// PrivateMessage is the envelope published on a recipient's name channel.
type PrivateMessage struct {
	From    string `json:"from"`
	Message string `json:"message"`
}
