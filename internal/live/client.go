package live

// Client is one live connection as the broadcast layer sees it. The
// transport owns the concrete type; the registry only needs identity and a
// way to push envelopes.
type Client interface {
	SessionID() string
	Username() string
	Send(message interface{}) error
}
