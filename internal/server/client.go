package server

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"

	"github.com/aurelia-server/aurelia/internal/debug"
	"github.com/aurelia-server/aurelia/internal/packets"
)

// Client represents one connected game client.
type Client struct {
	connection net.Conn
	ipAddr     string
	port       string

	// CharacterID binds the connection to a live session once the client
	// has entered the world; 0 until then.
	CharacterID uint32
}

func NewClient(connection net.Conn) *Client {
	addr := strings.Split(connection.RemoteAddr().String(), ":")

	c := &Client{connection: connection, ipAddr: addr[0]}
	if len(addr) > 1 {
		c.port = addr[1]
	}
	return c
}

func (c *Client) IPAddr() string { return c.ipAddr }
func (c *Client) Port() string   { return c.port }

// Read consumes the available bytes directly from the client's connection.
func (c *Client) Read(b []byte) (int, error) {
	return c.connection.Read(b)
}

// Close the underlying connection.
func (c *Client) Close() error {
	return c.connection.Close()
}

// Send serializes a packet and writes it to the client. The header's size
// field is filled in from the serialized length, so callers only set the
// packet type.
func (c *Client) Send(packet interface{}) error {
	debug.DumpPacket("outbound", packet)

	data, size := packets.BytesFromStruct(packet)
	binary.LittleEndian.PutUint16(data[0:2], uint16(size))
	return c.transmit(data, uint16(size))
}

// transmit writes the contents of data to the connection until the number
// of bytes written >= length.
func (c *Client) transmit(data []byte, length uint16) error {
	bytesSent := 0

	for bytesSent < int(length) {
		b, err := c.connection.Write(data[bytesSent:length])
		if err != nil {
			return fmt.Errorf("failed to send to client %v: %s", c.IPAddr(), err.Error())
		}
		bytesSent += b
	}
	return nil
}
