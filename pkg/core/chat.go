// pkg/core/chat.go
package core

// MessageTypeAPI marks chat messages addressed to scripts.
const MessageTypeAPI = "api"

// ChatMessage is an incoming chat line as relayed by the tabletop.
type ChatMessage struct {
	Type     string   `json:"type"`
	PlayerID string   `json:"playerid"`
	Content  string   `json:"content"`
	Selected []string `json:"selected,omitempty"`
}

// Delivery modes for outgoing chat.
const (
	DeliveryDesc    = "desc"
	DeliveryWhisper = "whisper"
	DeliveryDirect  = "direct"
	DeliveryPlain   = "plain"
)

// Outgoing is a chat message produced by a command.
// An empty Target means the message is for everyone.
type Outgoing struct {
	Speaker  string `json:"speaker,omitempty"`
	Target   string `json:"target,omitempty"`
	Delivery string `json:"delivery"`
	HTML     string `json:"html"`
}
