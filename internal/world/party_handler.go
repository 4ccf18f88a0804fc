package world

import (
	aurelia "github.com/aurelia-server/aurelia"
	"github.com/aurelia-server/aurelia/internal/packets"
)

// PartyManager converts inbound party packets into party state mutations.
// Failed preconditions are absorbed silently: a stale target id or a
// privilege check failure is a normal outcome of two connections racing,
// not an error to surface.
type PartyManager struct {
	registry *Registry
}

func NewPartyManager(registry *Registry) *PartyManager {
	return &PartyManager{registry: registry}
}

// HandleRequest marks the target as having a pending invitation from the
// actor and notifies them.
func (m *PartyManager) HandleRequest(actor *Player, pkt *packets.PartyRequest) {
	target, ok := m.registry.TryGet(pkt.TargetID)
	if !ok || target == actor {
		return
	}

	target.setPartyInviter(actor.ID)
	target.Send(&packets.PartyRequestNotify{
		Header:      packets.Header{Type: packets.PartyRequestType},
		RequesterID: actor.ID,
	})
}

// HandleResponse resolves the actor's pending invitation. Accepting either
// creates a party with the inviter as leader or joins the inviter's
// existing party; declining notifies the inviter. Either way the pending
// invitation is cleared.
func (m *PartyManager) HandleResponse(actor *Player, pkt *packets.PartyResponse) {
	inviterID := actor.PartyInviterID()
	if inviterID == 0 {
		return
	}
	actor.setPartyInviter(0)

	inviter, ok := m.registry.TryGet(inviterID)
	if !ok {
		// Inviter logged off mid-protocol; nothing left to do.
		return
	}

	if pkt.Declined != 0 {
		inviter.Send(&packets.PartyDeclined{
			Header:      packets.Header{Type: packets.PartyDeclinedType},
			CharacterID: actor.ID,
		})
		return
	}

	if actor.HasParty() {
		return
	}

	inviter.ensureParty().Join(actor)
}

// HandleLeave removes the actor from their party.
func (m *PartyManager) HandleLeave(actor *Player) {
	party := actor.Party()
	if party == nil {
		return
	}
	party.Leave(actor)
}

// HandleKick removes a member at the leader's request. Non-leaders are
// ignored; so are targets that are not current members.
func (m *PartyManager) HandleKick(actor *Player, pkt *packets.PartyKick) {
	party := actor.Party()
	if party == nil {
		return
	}

	target, ok := m.registry.TryGet(pkt.TargetID)
	if !ok {
		return
	}
	party.Kick(actor, target)
}

// HandleChangeLeader reassigns leadership at the leader's request.
func (m *PartyManager) HandleChangeLeader(actor *Player, pkt *packets.PartyChangeLeader) {
	party := actor.Party()
	if party == nil {
		return
	}

	target, ok := m.registry.TryGet(pkt.TargetID)
	if !ok {
		return
	}
	party.SetLeader(actor, target)
}

// HandleDisconnect treats a dropped connection as an immediate leave.
func (m *PartyManager) HandleDisconnect(p *Player) {
	party := p.Party()
	if party == nil {
		return
	}

	aurelia.Log.Debugf("character %d disconnected while in a party", p.ID)
	party.Leave(p)
}
