package server

import "context"

// Backend is implemented by anything that can own the lifecycle of client
// connections accepted by a Server. The world server is the only backend
// in this process, but the frontend logic doesn't care.
type Backend interface {
	// Name returns a uniquely identifying string.
	Name() string

	// StartSession is called once when a client connects, before any
	// packets are read.
	StartSession(c *Client) error

	// Handle is the main entry point for processing client packets. data
	// holds one complete packet including its header.
	Handle(ctx context.Context, c *Client, data []byte) error

	// CloseSession is called exactly once when the connection goes away,
	// whether by client action, network failure, or a handler panic.
	CloseSession(c *Client)
}
