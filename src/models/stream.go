package models

// -----------------------------------------------------------------------------
// Stream framing shared by the gateway and the client subscriber
// -----------------------------------------------------------------------------

// The live channel is a text-framed event stream: each event is either the
// heartbeat sentinel or a JSON-encoded MTick. Heartbeats prove liveness on a
// fixed interval so a subscriber can tell "no updates" from "connection dead".
const (
	StreamDataPrefix      = "data: "
	HeartbeatSentinel     = "heartbeat"
	StreamPath            = "/realtime-stream"
	StreamWebSocketPath   = "/ws"
	StreamContentType     = "text/event-stream"
	DefaultHeartbeatSecs  = 5
	DefaultSubscriberSize = 256
)
