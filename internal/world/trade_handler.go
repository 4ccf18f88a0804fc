package world

import (
	"sort"

	aurelia "github.com/aurelia-server/aurelia"
	"github.com/aurelia-server/aurelia/internal/packets"
)

// Side indicator values used in trade notifications: 1 is the recipient's
// own side of the window, 2 is the partner's.
const (
	tradeSideOwn     = 1
	tradeSidePartner = 2
)

// TradeManager runs the trade state machine. Every transition is serialized
// on the session lock; notifications are built under the lock and sent
// after it is released. Any step referencing a player, item, or session
// that no longer exists is absorbed as a no-op.
type TradeManager struct {
	registry *Registry
}

func NewTradeManager(registry *Registry) *TradeManager {
	return &TradeManager{registry: registry}
}

// HandleRequest links the two players as prospective partners and notifies
// the target. No session exists yet; that happens on acceptance.
func (m *TradeManager) HandleRequest(actor *Player, pkt *packets.TradeRequest) {
	target, ok := m.registry.TryGet(pkt.TargetID)
	if !ok || target == actor {
		return
	}
	if actor.TradePartnerID() != 0 || target.TradePartnerID() != 0 {
		return
	}

	actor.setTrade(nil, target.ID)
	target.setTrade(nil, actor.ID)
	target.setTradeRequester(actor.ID)

	target.Send(&packets.TradeRequestNotify{
		Header:      packets.Header{Type: packets.TradeRequestType},
		RequesterID: actor.ID,
	})
}

// HandleResponse resolves a pending trade request. Only the target of the
// original request can respond. Accepting creates the session and opens
// the trade window on both sides; declining clears the link and tells the
// requester the trade is off.
func (m *TradeManager) HandleResponse(actor *Player, pkt *packets.TradeResponse) {
	requesterID := actor.TradeRequesterID()
	if requesterID == 0 {
		return
	}
	actor.setTradeRequester(0)

	requester, ok := m.registry.TryGet(requesterID)
	if !ok {
		actor.setTrade(nil, 0)
		return
	}

	if pkt.Declined != 0 {
		actor.setTrade(nil, 0)
		requester.setTrade(nil, 0)
		requester.Send(&packets.TradeStop{
			Header: packets.Header{Type: packets.TradeStopType},
			Result: packets.TradeResultCancel,
		})
		return
	}

	session := newTradeSession(requester, actor)
	requester.setTrade(session, actor.ID)
	actor.setTrade(session, requester.ID)

	requester.Send(&packets.TradeStart{
		Header:    packets.Header{Type: packets.TradeStartType},
		PartnerID: actor.ID,
	})
	actor.Send(&packets.TradeStart{
		Header:    packets.Header{Type: packets.TradeStartType},
		PartnerID: requester.ID,
	})
}

// HandleAddItem stages an inventory stack into the actor's side of the
// window. The staged quantity is clamped to what the actor actually owns.
// Both sides are notified: the owner sees their own staged view, the
// partner sees the item's full description.
func (m *TradeManager) HandleAddItem(actor *Player, pkt *packets.TradeAddItem) {
	session := actor.TradeSession()
	if session == nil {
		return
	}

	session.mu.Lock()
	if session.closed {
		session.mu.Unlock()
		return
	}
	i := session.sideIndex(actor)
	if i < 0 {
		session.mu.Unlock()
		return
	}
	side, partner := session.sides[i], session.sides[1-i].player

	item := actor.FindItem(pkt.Bag, pkt.Slot)
	if item == nil {
		session.mu.Unlock()
		return
	}

	quantity := pkt.Quantity
	if quantity > item.Count {
		quantity = item.Count
	}

	side.items[pkt.TradeSlot] = &StagedItem{
		Bag:       pkt.Bag,
		Slot:      pkt.Slot,
		Quantity:  quantity,
		TradeSlot: pkt.TradeSlot,
	}

	partnerView := &packets.TradePartnerAddItem{
		Header:    packets.Header{Type: packets.TradePartnerAddItemType},
		TradeSlot: pkt.TradeSlot,
		Quantity:  quantity,
		ItemType:  item.ItemType,
		ItemID:    item.ItemID,
		Quality:   item.Quality,
		Gems:      item.Gems,
	}
	session.mu.Unlock()

	actor.Send(&packets.TradeOwnerAddItem{
		Header:    packets.Header{Type: packets.TradeOwnerAddItemType},
		Bag:       pkt.Bag,
		Slot:      pkt.Slot,
		Quantity:  quantity,
		TradeSlot: pkt.TradeSlot,
	})
	partner.Send(partnerView)
}

// HandleAddMoney stages a gold amount, clamped to the actor's balance.
func (m *TradeManager) HandleAddMoney(actor *Player, pkt *packets.TradeAddMoney) {
	session := actor.TradeSession()
	if session == nil {
		return
	}

	session.mu.Lock()
	if session.closed {
		session.mu.Unlock()
		return
	}
	i := session.sideIndex(actor)
	if i < 0 {
		session.mu.Unlock()
		return
	}

	amount := pkt.Amount
	if balance := actor.Gold(); amount > balance {
		amount = balance
	}
	session.sides[i].gold = amount
	partner := session.sides[1-i].player
	session.mu.Unlock()

	actor.Send(&packets.TradeMoneyUpdate{
		Header: packets.Header{Type: packets.TradeMoneyUpdateType},
		Side:   tradeSideOwn,
		Amount: amount,
	})
	partner.Send(&packets.TradeMoneyUpdate{
		Header: packets.Header{Type: packets.TradeMoneyUpdateType},
		Side:   tradeSidePartner,
		Amount: amount,
	})
}

// HandleDecide toggles the actor's decided flag. Retracting a decision
// also withdraws any confirmations on both sides, since they acknowledged
// an offer that is now in flux.
func (m *TradeManager) HandleDecide(actor *Player, pkt *packets.TradeDecide) {
	session := actor.TradeSession()
	if session == nil {
		return
	}

	session.mu.Lock()
	if session.closed {
		session.mu.Unlock()
		return
	}
	i := session.sideIndex(actor)
	if i < 0 {
		session.mu.Unlock()
		return
	}
	side := session.sides[i]

	if pkt.Decided != 0 && !side.decided {
		side.decided = true
	} else {
		side.decided = false
		session.sides[0].confirmed = false
		session.sides[1].confirmed = false
	}
	messages := decideNotifications(session)
	session.mu.Unlock()

	dispatch(messages)
}

// HandleFinish runs the confirmation phase: result 0 confirms, result 1
// withdraws both confirmations, result 2 cancels the trade outright. The
// exchange executes exactly once, in the step that observes both sides
// confirmed.
func (m *TradeManager) HandleFinish(actor *Player, pkt *packets.TradeFinish) {
	session := actor.TradeSession()
	if session == nil {
		return
	}

	switch pkt.Result {
	case packets.TradeResultCancel:
		m.cancelSession(session)

	case packets.TradeResultConfirmDeclined:
		session.mu.Lock()
		if session.closed {
			session.mu.Unlock()
			return
		}
		session.sides[0].confirmed = false
		session.sides[1].confirmed = false
		a, b := session.sides[0].player, session.sides[1].player
		session.mu.Unlock()

		for _, recipient := range []*Player{a, b} {
			for _, side := range []uint8{tradeSideOwn, tradeSidePartner} {
				recipient.Send(&packets.TradeConfirmUpdate{
					Header:   packets.Header{Type: packets.TradeConfirmUpdateType},
					Side:     side,
					Declined: 1,
				})
			}
		}

	case packets.TradeResultConfirm:
		session.mu.Lock()
		if session.closed {
			session.mu.Unlock()
			return
		}
		i := session.sideIndex(actor)
		if i < 0 {
			session.mu.Unlock()
			return
		}
		side := session.sides[i]
		if !side.decided {
			// Confirm before decide is out of order; ignore it.
			session.mu.Unlock()
			return
		}
		side.confirmed = true
		partner := session.sides[1-i].player

		var messages []outbound
		bothConfirmed := session.sides[0].confirmed && session.sides[1].confirmed
		if bothConfirmed {
			messages = m.executeExchange(session)
		}
		session.mu.Unlock()

		actor.Send(&packets.TradeConfirmUpdate{
			Header: packets.Header{Type: packets.TradeConfirmUpdateType},
			Side:   tradeSideOwn,
		})
		partner.Send(&packets.TradeConfirmUpdate{
			Header: packets.Header{Type: packets.TradeConfirmUpdateType},
			Side:   tradeSidePartner,
		})
		dispatch(messages)

	default:
		aurelia.Log.Debugf("character %d sent unknown trade finish result %d", actor.ID, pkt.Result)
	}
}

// HandleDisconnect force-cancels any open trade for the remaining side and
// clears a pending (unaccepted) request link.
func (m *TradeManager) HandleDisconnect(p *Player) {
	if session := p.TradeSession(); session != nil {
		m.cancelSession(session)
		return
	}

	partnerID := p.TradePartnerID()
	if partnerID == 0 {
		return
	}
	p.setTrade(nil, 0)
	p.setTradeRequester(0)

	if partner, ok := m.registry.TryGet(partnerID); ok && partner.TradePartnerID() == p.ID {
		partner.setTrade(nil, 0)
		partner.setTradeRequester(0)
		partner.Send(&packets.TradeStop{
			Header: packets.Header{Type: packets.TradeStopType},
			Result: packets.TradeResultCancel,
		})
	}
}

// cancelSession tears down a trade with nothing exchanged.
func (m *TradeManager) cancelSession(session *TradeSession) {
	session.mu.Lock()
	if session.closed {
		session.mu.Unlock()
		return
	}
	session.closed = true

	a, b := session.sides[0].player, session.sides[1].player
	session.sides[0].reset()
	session.sides[1].reset()
	session.mu.Unlock()

	for _, p := range []*Player{a, b} {
		p.setTrade(nil, 0)
		p.setTradeRequester(0)
		p.Send(&packets.TradeStop{
			Header: packets.Header{Type: packets.TradeStopType},
			Result: packets.TradeResultCancel,
		})
	}
}

// executeExchange commits the trade: every staged transfer is applied in a
// deterministic order (requester's items, responder's items, requester's
// gold, responder's gold) so bag placement is reproducible. Staged amounts
// are re-clamped against current ownership; a staged stack that vanished
// through another system is skipped rather than failing the commit.
// Must be called with the session lock held; returns the notifications to
// send after release.
func (m *TradeManager) executeExchange(session *TradeSession) []outbound {
	session.closed = true

	a, b := session.sides[0], session.sides[1]
	var messages []outbound

	transferItems(a, b.player)
	transferItems(b, a.player)
	messages = append(messages, transferGold(a, b.player)...)
	messages = append(messages, transferGold(b, a.player)...)

	for _, side := range session.sides {
		p := side.player
		side.reset()
		p.setTrade(nil, 0)
		p.setTradeRequester(0)
		messages = append(messages, outbound{p, &packets.TradeStop{
			Header: packets.Header{Type: packets.TradeStopType},
			Result: 0,
		}})
	}
	return messages
}

// transferItems moves one side's staged stacks to the recipient in trade
// slot order.
func transferItems(from *tradeSide, to *Player) {
	slots := make([]int, 0, len(from.items))
	for slot := range from.items {
		slots = append(slots, int(slot))
	}
	sort.Ints(slots)

	for _, slot := range slots {
		staged := from.items[uint8(slot)]

		item := from.player.takeStaged(staged.Bag, staged.Slot, staged.Quantity)
		if item == nil {
			aurelia.Log.Debugf("staged item at bag %d slot %d no longer exists for character %d",
				staged.Bag, staged.Slot, from.player.ID)
			continue
		}
		if !to.receive(item) {
			aurelia.Log.Warnf("character %d has no room for traded item type=%d id=%d count=%d",
				to.ID, item.ItemType, item.ItemID, item.Count)
		}
	}
}

// transferGold debits the staged amount (re-clamped to the current
// balance) and credits the recipient.
func transferGold(from *tradeSide, to *Player) []outbound {
	if from.gold == 0 {
		return nil
	}

	amount := from.gold
	if balance := from.player.Gold(); amount > balance {
		amount = balance
	}
	if amount == 0 {
		return nil
	}

	debit := from.player.adjustGold(from.player.Gold() - amount)
	credit := to.adjustGold(to.Gold() + amount)
	return []outbound{debit, credit}
}

// decideNotifications reports both sides' decided flags to both players.
// Must be called with the session lock held.
func decideNotifications(session *TradeSession) []outbound {
	var messages []outbound
	for i, side := range session.sides {
		other := session.sides[1-i]

		own := uint8(0)
		if side.decided {
			own = 1
		}
		partner := uint8(0)
		if other.decided {
			partner = 1
		}

		messages = append(messages,
			outbound{side.player, &packets.TradeDecideUpdate{
				Header:  packets.Header{Type: packets.TradeDecideUpdateType},
				Side:    tradeSideOwn,
				Decided: own,
			}},
			outbound{side.player, &packets.TradeDecideUpdate{
				Header:  packets.Header{Type: packets.TradeDecideUpdateType},
				Side:    tradeSidePartner,
				Decided: partner,
			}},
		)
	}
	return messages
}
