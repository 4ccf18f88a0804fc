package world

import (
	aurelia "github.com/aurelia-server/aurelia"
)

// PacketSender delivers outbound packets to one player's connection. The
// world server's TCP client satisfies this; tests substitute a recorder.
type PacketSender interface {
	Send(packet interface{}) error
}

// outbound pairs a packet with its destination. State transitions build
// these while holding entity locks; they are dispatched only after every
// lock is released so no send ever blocks a transition.
type outbound struct {
	to  *Player
	pkt interface{}
}

func dispatch(messages []outbound) {
	for _, m := range messages {
		m.to.Send(m.pkt)
	}
}

// Send writes a packet to the player's connection. Sessions without a
// connection (mid-teardown) drop packets silently.
func (p *Player) Send(packet interface{}) {
	if p.sender == nil {
		return
	}
	if err := p.sender.Send(packet); err != nil {
		aurelia.Log.Debugf("failed to send packet to character %d: %s", p.ID, err)
	}
}
