package ws

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgReady    = "ready"
	MsgSnapshot = "snapshot"
	MsgPong     = "pong"
	MsgError    = "error"
)
