package world

import "sync"

// StagedItem is one inventory stack (or part of one) offered in a trade
// window. Quantity is clamped against actual ownership both when staged
// and again at commit time, since the backing stack can shrink through
// other systems in between.
type StagedItem struct {
	Bag       uint8
	Slot      uint8
	Quantity  uint8
	TradeSlot uint8
}

// tradeSide is one participant's half of a trade: their staged offer and
// their progress through the decide/confirm acknowledgment phases.
type tradeSide struct {
	player    *Player
	items     map[uint8]*StagedItem
	gold      uint32
	decided   bool
	confirmed bool
}

func (s *tradeSide) reset() {
	s.items = make(map[uint8]*StagedItem)
	s.gold = 0
	s.decided = false
	s.confirmed = false
}

// TradeSession is the shared transaction state for one active two-party
// exchange. Both participants' connection handlers mutate it, so every
// transition runs under the session lock; the closed flag stops a racing
// handler on the other connection from acting on a finished trade.
type TradeSession struct {
	mu     sync.Mutex
	closed bool
	sides  [2]*tradeSide
}

func newTradeSession(requester, responder *Player) *TradeSession {
	session := &TradeSession{
		sides: [2]*tradeSide{
			{player: requester, items: make(map[uint8]*StagedItem)},
			{player: responder, items: make(map[uint8]*StagedItem)},
		},
	}
	return session
}

// sideIndex returns which side of the trade p occupies, or -1.
// Must be called with mu held.
func (t *TradeSession) sideIndex(p *Player) int {
	for i, side := range t.sides {
		if side.player == p {
			return i
		}
	}
	return -1
}

// Participants returns both players in side order.
func (t *TradeSession) Participants() [2]*Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	return [2]*Player{t.sides[0].player, t.sides[1].player}
}

// StagedGold returns the gold amount p currently has staged.
func (t *TradeSession) StagedGold(p *Player) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i := t.sideIndex(p); i >= 0 {
		return t.sides[i].gold
	}
	return 0
}

// StagedItems returns a snapshot of p's staged items.
func (t *TradeSession) StagedItems(p *Player) []StagedItem {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.sideIndex(p)
	if i < 0 {
		return nil
	}
	items := make([]StagedItem, 0, len(t.sides[i].items))
	for _, staged := range t.sides[i].items {
		items = append(items, *staged)
	}
	return items
}

// Flags returns p's decided and confirmed flags.
func (t *TradeSession) Flags(p *Player) (decided, confirmed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i := t.sideIndex(p); i >= 0 {
		return t.sides[i].decided, t.sides[i].confirmed
	}
	return false, false
}
