package world

import (
	"testing"

	"github.com/aurelia-server/aurelia/internal/packets"
)

func setUpParty(t *testing.T, names ...string) (*PartyManager, []*Player, []*fakeSender) {
	t.Helper()

	registry := NewRegistry()
	manager := NewPartyManager(registry)

	players := make([]*Player, 0, len(names))
	senders := make([]*fakeSender, 0, len(names))
	for i, name := range names {
		player, sender := newTestPlayer(uint32(i+1), name)
		registry.Register(player)
		players = append(players, player)
		senders = append(senders, sender)
	}
	return manager, players, senders
}

// invite walks a request/accept exchange between two registered players.
func invite(m *PartyManager, inviter, target *Player) {
	m.HandleRequest(inviter, &packets.PartyRequest{TargetID: target.ID})
	m.HandleResponse(target, &packets.PartyResponse{})
}

func lastPartyInfo(t *testing.T, sender *fakeSender) *packets.PartyInfo {
	t.Helper()

	var info *packets.PartyInfo
	for _, pkt := range sender.sent() {
		if p, ok := pkt.(*packets.PartyInfo); ok {
			info = p
		}
	}
	if info == nil {
		t.Fatal("expected a PartyInfo notification")
	}
	return info
}

func TestPartyInviteAndAccept(t *testing.T) {
	manager, players, senders := setUpParty(t, "Elwen", "Kaelis")
	inviter, target := players[0], players[1]

	manager.HandleRequest(inviter, &packets.PartyRequest{TargetID: target.ID})

	notify, ok := senders[1].sent()[0].(*packets.PartyRequestNotify)
	if !ok {
		t.Fatalf("expected a PartyRequestNotify, got %T", senders[1].sent()[0])
	}
	if notify.RequesterID != inviter.ID {
		t.Errorf("expected requester %d, got %d", inviter.ID, notify.RequesterID)
	}

	manager.HandleResponse(target, &packets.PartyResponse{})

	party := inviter.Party()
	if party == nil || target.Party() != party {
		t.Fatal("expected both players to share one party")
	}
	if party.Leader() != inviter {
		t.Error("expected the inviter to lead the new party")
	}

	members := party.Members()
	if len(members) != 2 || members[0] != inviter || members[1] != target {
		t.Errorf("unexpected member order: %v", members)
	}

	// Each member's roster excludes themselves.
	info := lastPartyInfo(t, senders[1])
	if info.MemberCount != 1 || info.Members[0].ID != inviter.ID {
		t.Errorf("unexpected roster for the new member: %+v", info)
	}
	if info.LeaderIndex != 0 {
		t.Errorf("expected leader index 0, got %d", info.LeaderIndex)
	}
}

func TestPartyDeclineNotifiesInviter(t *testing.T) {
	manager, players, senders := setUpParty(t, "Elwen", "Kaelis")
	inviter, target := players[0], players[1]

	manager.HandleRequest(inviter, &packets.PartyRequest{TargetID: target.ID})
	manager.HandleResponse(target, &packets.PartyResponse{Declined: 1})

	declined, ok := senders[0].sent()[0].(*packets.PartyDeclined)
	if !ok {
		t.Fatalf("expected a PartyDeclined, got %T", senders[0].sent()[0])
	}
	if declined.CharacterID != target.ID {
		t.Errorf("expected decliner id %d, got %d", target.ID, declined.CharacterID)
	}
	if inviter.HasParty() || target.HasParty() {
		t.Error("expected no party to exist after a decline")
	}
}

func TestPartyResponseWithoutInvitation(t *testing.T) {
	manager, players, _ := setUpParty(t, "Elwen")

	manager.HandleResponse(players[0], &packets.PartyResponse{})

	if players[0].HasParty() {
		t.Error("expected no party without a pending invitation")
	}
}

func TestPartyJoinExisting(t *testing.T) {
	manager, players, _ := setUpParty(t, "Elwen", "Kaelis", "Mira")
	invite(manager, players[0], players[1])
	invite(manager, players[0], players[2])

	members := players[0].Party().Members()
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(members))
	}
	if members[2] != players[2] {
		t.Error("expected the latest joiner at the end of the member list")
	}
	if players[0].Party().Leader() != players[0] {
		t.Error("expected the original leader to be unchanged")
	}
}

func TestPartyMemberAlreadyInPartyIgnoresInvite(t *testing.T) {
	manager, players, _ := setUpParty(t, "Elwen", "Kaelis", "Mira")
	invite(manager, players[0], players[1])

	// players[1] already has a party; accepting another invitation is a no-op.
	invite(manager, players[2], players[1])

	if players[2].HasParty() {
		t.Error("expected the second inviter to have no party")
	}
	if len(players[0].Party().Members()) != 2 {
		t.Error("expected the original party to be unchanged")
	}
}

func TestPartyLeaveTransfersLeadership(t *testing.T) {
	manager, players, senders := setUpParty(t, "Elwen", "Kaelis", "Mira")
	invite(manager, players[0], players[1])
	invite(manager, players[0], players[2])
	senders[0].clear()

	manager.HandleLeave(players[0])

	if players[0].HasParty() {
		t.Error("expected the leaver to have no party")
	}
	party := players[1].Party()
	if party.Leader() != players[1] {
		t.Error("expected leadership to pass to the first remaining member")
	}
	if len(party.Members()) != 2 {
		t.Errorf("expected 2 remaining members, got %d", len(party.Members()))
	}

	// The leaver is told their party view is now empty.
	info := lastPartyInfo(t, senders[0])
	if info.MemberCount != 0 {
		t.Errorf("expected an empty roster for the leaver, got %d members", info.MemberCount)
	}
}

func TestPartyLastMembersLeaving(t *testing.T) {
	manager, players, _ := setUpParty(t, "Elwen", "Kaelis")
	invite(manager, players[0], players[1])

	manager.HandleLeave(players[1])
	manager.HandleLeave(players[0])

	if players[0].HasParty() || players[1].HasParty() {
		t.Error("expected the party to dissolve once everyone left")
	}
}

func TestPartyKick(t *testing.T) {
	manager, players, _ := setUpParty(t, "Elwen", "Kaelis", "Mira")
	invite(manager, players[0], players[1])
	invite(manager, players[0], players[2])

	// Non-leaders cannot kick.
	manager.HandleKick(players[1], &packets.PartyKick{TargetID: players[2].ID})
	if len(players[0].Party().Members()) != 3 {
		t.Fatal("expected a kick by a non-leader to be ignored")
	}

	// The leader cannot be kicked, even by themselves.
	manager.HandleKick(players[0], &packets.PartyKick{TargetID: players[0].ID})
	if len(players[0].Party().Members()) != 3 {
		t.Fatal("expected a kick against the leader to be ignored")
	}

	manager.HandleKick(players[0], &packets.PartyKick{TargetID: players[1].ID})
	if players[1].HasParty() {
		t.Error("expected the kicked member to have no party")
	}
	if len(players[0].Party().Members()) != 2 {
		t.Errorf("expected 2 remaining members, got %d", len(players[0].Party().Members()))
	}
}

func TestPartyChangeLeader(t *testing.T) {
	manager, players, _ := setUpParty(t, "Elwen", "Kaelis")
	invite(manager, players[0], players[1])

	// Only the current leader can reassign leadership.
	manager.HandleChangeLeader(players[1], &packets.PartyChangeLeader{TargetID: players[1].ID})
	if players[0].Party().Leader() != players[0] {
		t.Fatal("expected a reassignment by a non-leader to be ignored")
	}

	manager.HandleChangeLeader(players[0], &packets.PartyChangeLeader{TargetID: players[1].ID})
	if players[0].Party().Leader() != players[1] {
		t.Error("expected leadership to move to the target")
	}
}

func TestPartyDisconnectLeaves(t *testing.T) {
	manager, players, _ := setUpParty(t, "Elwen", "Kaelis", "Mira")
	invite(manager, players[0], players[1])
	invite(manager, players[0], players[2])

	manager.HandleDisconnect(players[0])

	if players[0].HasParty() {
		t.Error("expected the disconnected player to be out of the party")
	}
	if players[1].Party().Leader() != players[1] {
		t.Error("expected leadership to pass on disconnect")
	}
}

func TestPartyInviteUnknownTarget(t *testing.T) {
	manager, players, senders := setUpParty(t, "Elwen")

	manager.HandleRequest(players[0], &packets.PartyRequest{TargetID: 99})

	if len(senders[0].sent()) != 0 {
		t.Error("expected no notifications for an unknown target")
	}
}
