package world

import (
	"sync"

	aurelia "github.com/aurelia-server/aurelia"
	"github.com/aurelia-server/aurelia/internal/data"
	"github.com/aurelia-server/aurelia/internal/packets"
)

// UpdateEnqueuer queues a character mutation for eventual durable storage.
// Satisfied by data.UpdateQueue.
type UpdateEnqueuer interface {
	Enqueue(task data.UpdateTask)
}

// BuffPruner removes a character's expired persisted buffs. Passed in at
// session construction so the load path doesn't reach into ambient state.
type BuffPruner interface {
	PruneExpiredBuffs(characterID uint) error
}

// Player is the live, in-memory state of one connected character. All
// mutable fields are guarded by mu; relationship entities (Party,
// TradeSession) carry their own locks and are never mutated while mu is
// held by the same goroutine.
type Player struct {
	ID    uint32
	Name  string
	Level uint16

	mu     sync.Mutex
	sender PacketSender
	queue  UpdateEnqueuer

	currentHP int
	currentMP int
	currentSP int
	extraHP   int
	extraMP   int
	extraSP   int

	dead     bool
	killerID uint32

	posX  float32
	posY  float32
	posZ  float32
	angle uint16

	gold  uint32
	items []*Item

	party          *Party
	partyInviterID uint32

	trade            *TradeSession
	tradePartnerID   uint32
	tradeRequesterID uint32
}

// Base pool sizes before equipment and buff bonuses.
const (
	baseHP = 100
	baseMP = 500
	baseSP = 200
)

// NewPlayer builds an empty live session. Callers normally go through
// World.LoadPlayer instead.
func NewPlayer(id uint32, name string, sender PacketSender, queue UpdateEnqueuer) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		sender: sender,
		queue:  queue,
	}
}

func (p *Player) MaxHP() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxHP()
}

func (p *Player) MaxMP() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxMP()
}

func (p *Player) MaxSP() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxSP()
}

// Unlocked variants for use inside pool transitions.
func (p *Player) maxHP() int { return baseHP + p.extraHP }
func (p *Player) maxMP() int { return baseMP + p.extraMP }
func (p *Player) maxSP() int { return baseSP + p.extraSP }

func (p *Player) CurrentHP() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentHP
}

func (p *Player) CurrentMP() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentMP
}

func (p *Player) CurrentSP() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentSP
}

// IsDead reports whether the character's health pool has reached zero.
func (p *Player) IsDead() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dead
}

func (p *Player) Gold() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gold
}

// ChangeGold sets the character's gold balance, queues the durable write,
// and reports the new balance to the client.
func (p *Player) ChangeGold(gold uint32) {
	dispatch([]outbound{p.adjustGold(gold)})
}

// UpdatePosition records a new position, optionally queueing a durable
// write, and reports the move.
func (p *Player) UpdatePosition(x, y, z float32, angle uint16, save bool) {
	p.mu.Lock()
	p.posX, p.posY, p.posZ, p.angle = x, y, z, angle

	if save {
		p.enqueue(data.UpdateTask{
			Kind:        data.UpdateCharacterMove,
			CharacterID: uint(p.ID),
			X:           x,
			Y:           y,
			Z:           z,
			Angle:       angle,
		})
	}
	p.mu.Unlock()

	aurelia.Log.Debugf("character %d moved to x=%f y=%f z=%f angle=%d", p.ID, x, y, z, angle)

	p.Send(&packets.CharacterMoved{
		Header:      packets.Header{Type: packets.CharacterMovedType},
		CharacterID: p.ID,
		X:           x,
		Y:           y,
		Z:           z,
		Angle:       angle,
	})
}

// Position returns the character's current coordinates.
func (p *Player) Position() (x, y, z float32, angle uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.posX, p.posY, p.posZ, p.angle
}

// HasParty reports whether the player currently belongs to a party.
func (p *Player) HasParty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.party != nil
}

// Party returns the player's current party, or nil.
func (p *Player) Party() *Party {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.party
}

// IsPartyLeader reports whether the player leads their current party.
func (p *Player) IsPartyLeader() bool {
	p.mu.Lock()
	party := p.party
	p.mu.Unlock()

	if party == nil {
		return false
	}
	return party.Leader() == p
}

// PartyInviterID returns the id of the character with a pending invitation
// to this player, or 0.
func (p *Player) PartyInviterID() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.partyInviterID
}

func (p *Player) setPartyInviter(id uint32) {
	p.mu.Lock()
	p.partyInviterID = id
	p.mu.Unlock()
}

func (p *Player) setParty(party *Party) {
	p.mu.Lock()
	p.party = party
	p.mu.Unlock()
}

// TradeSession returns the player's active trade, or nil.
func (p *Player) TradeSession() *TradeSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trade
}

// TradePartnerID returns the id of the character this player is trading
// with (or has a pending trade request with), or 0.
func (p *Player) TradePartnerID() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tradePartnerID
}

func (p *Player) setTrade(session *TradeSession, partnerID uint32) {
	p.mu.Lock()
	p.trade = session
	p.tradePartnerID = partnerID
	p.mu.Unlock()
}

// TradeRequesterID returns the id of the character whose trade request is
// awaiting this player's response, or 0.
func (p *Player) TradeRequesterID() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tradeRequesterID
}

func (p *Player) setTradeRequester(id uint32) {
	p.mu.Lock()
	p.tradeRequesterID = id
	p.mu.Unlock()
}

// takeStaged detaches up to quantity units of the stack at (bag, slot),
// clamped to what is actually there.
func (p *Player) takeStaged(bag, slot, quantity uint8) *Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.removeQuantity(bag, slot, quantity)
}

// receive places a detached item into the player's bags.
func (p *Player) receive(item *Item) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addItem(item)
}

// adjustGold sets a new balance, queues the durable write, and returns the
// notification for the caller to dispatch once its entity locks are
// released.
func (p *Player) adjustGold(gold uint32) outbound {
	p.mu.Lock()
	p.gold = gold
	p.enqueue(data.UpdateTask{
		Kind:        data.UpdateGold,
		CharacterID: uint(p.ID),
		Gold:        gold,
	})
	p.mu.Unlock()

	return outbound{p, &packets.GoldUpdate{
		Header:      packets.Header{Type: packets.GoldUpdateType},
		CharacterID: p.ID,
		Gold:        gold,
	}}
}

// enqueue must be called with mu held.
func (p *Player) enqueue(task data.UpdateTask) {
	if p.queue != nil {
		p.queue.Enqueue(task)
	}
}

// queuePoolSave persists the current pool values. Must be called with mu held.
func (p *Player) queuePoolSave() {
	p.enqueue(data.UpdateTask{
		Kind:          data.UpdatePools,
		CharacterID:   uint(p.ID),
		HealthPoints:  p.currentHP,
		ManaPoints:    p.currentMP,
		StaminaPoints: p.currentSP,
	})
}
