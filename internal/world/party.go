package world

import (
	"sync"

	"github.com/aurelia-server/aurelia/internal/packets"
)

// Party is a group of live sessions with one leader. Members are kept in
// join order; the leader is always one of the members. The party exists
// only while it has members — removing the last member leaves it
// unreachable from any session.
//
// Every mutating operation takes the party lock for the duration of one
// transition and builds its notifications before releasing it, so no
// member ever observes a half-updated roster.
type Party struct {
	mu      sync.Mutex
	members []*Player
	leader  *Player
}

// NewParty creates a party with the founder as its only member and leader.
func NewParty(founder *Player) *Party {
	party := &Party{
		members: []*Player{founder},
		leader:  founder,
	}
	founder.setParty(party)
	return party
}

// ensureParty returns the player's party, founding one with the player as
// leader if they have none. The check and the creation happen under the
// player lock so two racing acceptances cannot found two parties.
func (p *Player) ensureParty() *Party {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.party == nil {
		p.party = &Party{
			members: []*Player{p},
			leader:  p,
		}
	}
	return p.party
}

// Leader returns the current leader.
func (pt *Party) Leader() *Player {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.leader
}

// Members returns the member list in join order.
func (pt *Party) Members() []*Player {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return append([]*Player(nil), pt.members...)
}

// Join appends a player to the member list and notifies every member of
// the new roster.
func (pt *Party) Join(p *Player) {
	pt.mu.Lock()
	for _, member := range pt.members {
		if member == p {
			pt.mu.Unlock()
			return
		}
	}
	pt.members = append(pt.members, p)
	messages := pt.rosterNotifications()
	pt.mu.Unlock()

	p.setParty(pt)
	dispatch(messages)
}

// Leave removes a player. If the leader leaves, leadership passes to the
// first remaining member in join order. Removing the last member
// dissolves the party.
func (pt *Party) Leave(p *Player) {
	pt.mu.Lock()
	if !pt.removeLocked(p) {
		pt.mu.Unlock()
		return
	}

	if pt.leader == p && len(pt.members) > 0 {
		pt.leader = pt.members[0]
	}
	messages := pt.rosterNotifications()
	pt.mu.Unlock()

	p.setParty(nil)
	p.Send(&packets.PartyInfo{Header: packets.Header{Type: packets.PartyInfoType}})
	dispatch(messages)
}

// Kick removes a non-leader member at the leader's request. Requests from
// anyone but the leader, or against the leader, are ignored.
func (pt *Party) Kick(actor, target *Player) {
	pt.mu.Lock()
	if pt.leader != actor || target == pt.leader {
		pt.mu.Unlock()
		return
	}
	if !pt.removeLocked(target) {
		pt.mu.Unlock()
		return
	}
	messages := pt.rosterNotifications()
	pt.mu.Unlock()

	target.setParty(nil)
	target.Send(&packets.PartyInfo{Header: packets.Header{Type: packets.PartyInfoType}})
	dispatch(messages)
}

// SetLeader reassigns leadership to another current member at the leader's
// request.
func (pt *Party) SetLeader(actor, target *Player) {
	pt.mu.Lock()
	if pt.leader != actor || !pt.containsLocked(target) {
		pt.mu.Unlock()
		return
	}
	pt.leader = target
	messages := pt.rosterNotifications()
	pt.mu.Unlock()

	dispatch(messages)
}

// removeLocked takes a player out of the member list, reporting whether
// they were a member. Must be called with mu held.
func (pt *Party) removeLocked(p *Player) bool {
	for i, member := range pt.members {
		if member == p {
			pt.members = append(pt.members[:i], pt.members[i+1:]...)
			return true
		}
	}
	return false
}

func (pt *Party) containsLocked(p *Player) bool {
	for _, member := range pt.members {
		if member == p {
			return true
		}
	}
	return false
}

// rosterNotifications builds a PartyInfo for every remaining member. Each
// recipient's own entry is excluded from their copy of the list; the
// leader index refers to the full member list. Must be called with mu held.
func (pt *Party) rosterNotifications() []outbound {
	leaderIndex := uint8(0)
	for i, member := range pt.members {
		if member == pt.leader {
			leaderIndex = uint8(i)
			break
		}
	}

	messages := make([]outbound, 0, len(pt.members))
	for _, recipient := range pt.members {
		info := &packets.PartyInfo{
			Header:      packets.Header{Type: packets.PartyInfoType},
			LeaderIndex: leaderIndex,
		}
		for _, member := range pt.members {
			if member == recipient {
				continue
			}
			entry := packets.PartyMember{ID: member.ID, Level: member.Level}
			copy(entry.Name[:], member.Name)
			info.Members = append(info.Members, entry)
		}
		info.MemberCount = uint8(len(info.Members))
		messages = append(messages, outbound{recipient, info})
	}
	return messages
}
