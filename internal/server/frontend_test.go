package server

import (
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aurelia-server/aurelia/internal/packets"
)

func TestSendAndReadNextPacket(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	sender := NewClient(local)
	receiver := NewClient(remote)
	srv := New("", nil)

	sent := &packets.TradeAddItem{
		Header:    packets.Header{Type: packets.TradeAddItemType},
		Bag:       1,
		Slot:      4,
		Quantity:  3,
		TradeSlot: 0,
	}

	// Pipe writes block until the other end reads, so send concurrently.
	errs := make(chan error, 1)
	go func() { errs <- sender.Send(sent) }()

	data, err := srv.readNextPacket(receiver)
	if err != nil {
		t.Fatalf("readNextPacket() returned an unexpected error: %s", err)
	}
	if err := <-errs; err != nil {
		t.Fatalf("Send() returned an unexpected error: %s", err)
	}

	var received packets.TradeAddItem
	packets.StructFromBytes(data, &received)

	// Send fills in the header's size field from the serialized length.
	want := *sent
	want.Size = 8
	if diff := cmp.Diff(&want, &received); diff != "" {
		t.Errorf("packet did not survive the round trip; diff:\n%s", diff)
	}
}

func TestReadNextPacketRejectsInvalidSize(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	receiver := NewClient(remote)
	srv := New("", nil)

	// A size smaller than the header itself can never be valid.
	go func() { _, _ = local.Write([]byte{0x02, 0x00, 0x01, 0x01}) }()

	if _, err := srv.readNextPacket(receiver); err == nil {
		t.Error("expected an error for a packet size smaller than the header")
	}
}

func TestClientListAddRemove(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	clients := newClientList()
	c := NewClient(local)

	clients.add(c)
	if clients.len() != 1 {
		t.Fatalf("expected 1 client, got %d", clients.len())
	}

	clients.remove(c)
	if clients.len() != 0 {
		t.Errorf("expected 0 clients after removal, got %d", clients.len())
	}
}
