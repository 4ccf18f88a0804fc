package server

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"time"

	"github.com/spf13/viper"

	aurelia "github.com/aurelia-server/aurelia"
	"github.com/aurelia-server/aurelia/internal/packets"
)

// Server implements the concurrent client connection logic for one backend.
//
// Data is read from any connected clients and passed to the backend,
// abstracting the lower level connection details away from the protocol
// handlers.
type Server struct {
	addr    string
	backend Backend

	clients *clientList
}

func New(addr string, backend Backend) *Server {
	return &Server{
		addr:    addr,
		backend: backend,
		clients: newClientList(),
	}
}

// Start opens a TCP socket for the server and enters a blocking loop
// accepting client connections and spinning off goroutines to handle them.
// Returns when ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	tcpAddr, err := net.ResolveTCPAddr("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("error resolving address %s: %w", s.addr, err)
	}
	socket, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return fmt.Errorf("error listening on socket: %w", err)
	}
	defer socket.Close()

	aurelia.Log.Infof("waiting for %s connections on %v", s.backend.Name(), tcpAddr)

	connections := make(chan net.Conn)
	go func() {
		for {
			// Poll until we can accept more clients.
			for s.isFull() {
				time.Sleep(time.Second)
			}

			connection, err := socket.AcceptTCP()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
				}
				aurelia.Log.Warnf("failed to accept connection: %s", err.Error())
				continue
			}
			connections <- connection
		}
	}()

	for {
		select {
		case <-ctx.Done():
			aurelia.Log.Infof("%s server exiting", s.backend.Name())
			return ctx.Err()
		case connection := <-connections:
			go s.acceptClient(ctx, connection)
		}
	}
}

func (s *Server) isFull() bool {
	max := viper.GetInt("max_connections")
	return max > 0 && s.clients.len() >= max
}

func (s *Server) acceptClient(ctx context.Context, connection net.Conn) {
	c := NewClient(connection)

	if err := s.backend.StartSession(c); err != nil {
		aurelia.Log.Errorf("StartSession() failed for client %s: %s", c.IPAddr(), err)
		_ = connection.Close()
		return
	}

	s.clients.add(c)
	s.processPackets(ctx, c)
}

// processPackets runs a blocking loop dedicated to reading data sent from
// a game client and only returns once the connection has closed.
func (s *Server) processPackets(ctx context.Context, c *Client) {
	defer s.closeConnectionAndRecover(c)

	for {
		data, err := s.readNextPacket(c)
		if err == io.EOF {
			break
		} else if err != nil {
			aurelia.Log.Warnf("error reading from client %s: %s", c.IPAddr(), err)
			break
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		if err = s.backend.Handle(ctx, c, data); err != nil {
			aurelia.Log.Warnf("error in client communication: %s", err)
			return
		}
	}
}

// readNextPacket reads the fixed-size header off the connection, then the
// rest of the packet it describes, returning the complete packet bytes.
func (s *Server) readNextPacket(c *Client) ([]byte, error) {
	header := make([]byte, packets.HeaderSize)
	if err := s.readBytes(c, header); err != nil {
		return nil, err
	}

	size := binary.LittleEndian.Uint16(header[0:2])
	if size < packets.HeaderSize {
		return nil, fmt.Errorf("client %s sent invalid packet size %d", c.IPAddr(), size)
	}

	data := make([]byte, size)
	copy(data, header)
	if err := s.readBytes(c, data[packets.HeaderSize:]); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Server) readBytes(c *Client, buffer []byte) error {
	for read := 0; read < len(buffer); {
		n, err := c.Read(buffer[read:])
		if err != nil {
			if err == io.EOF {
				return io.EOF
			}
			return err
		}
		read += n
	}
	return nil
}

// closeConnectionAndRecover catches any handler panics, disconnects the
// client, and removes them from the list regardless of the state of the
// connection.
func (s *Server) closeConnectionAndRecover(c *Client) {
	if err := recover(); err != nil {
		aurelia.Log.Errorf("recovered from panic in %s client handler: %s\n%s",
			s.backend.Name(), err, debug.Stack())
	}

	s.backend.CloseSession(c)
	s.clients.remove(c)

	if err := c.Close(); err != nil {
		aurelia.Log.Warnf("failed to close connection from %s: %s", c.IPAddr(), err)
	}

	aurelia.Log.Infof("disconnected %s client %s", s.backend.Name(), c.IPAddr())
}
