package world

import (
	"github.com/aurelia-server/aurelia/internal/packets"
)

// Resource pool transitions. Each transition clamps the new value to
// [0, max], records the change, and returns the notifications it produced
// so the caller can dispatch them outside the player lock. A transition
// that changes nothing produces nothing.

// SetCurrentHP moves the health pool to value. Reaching zero transitions
// the player to the dead state; killerID records the source of the final
// change for the death notification.
func (p *Player) SetCurrentHP(value int, killerID uint32) {
	p.mu.Lock()
	messages := p.applyHP(value, killerID)
	p.mu.Unlock()

	dispatch(messages)
}

// DecreaseHP applies damage from the given source.
func (p *Player) DecreaseHP(amount int, killerID uint32) {
	p.mu.Lock()
	messages := p.applyHP(p.currentHP-amount, killerID)
	p.mu.Unlock()

	dispatch(messages)
}

func (p *Player) SetCurrentMP(value int) {
	p.mu.Lock()
	messages := p.applyPool(packets.PoolMP, &p.currentMP, value, p.maxMP())
	if len(messages) > 0 {
		p.queuePoolSave()
	}
	p.mu.Unlock()

	dispatch(messages)
}

func (p *Player) SetCurrentSP(value int) {
	p.mu.Lock()
	messages := p.applyPool(packets.PoolSP, &p.currentSP, value, p.maxSP())
	if len(messages) > 0 {
		p.queuePoolSave()
	}
	p.mu.Unlock()

	dispatch(messages)
}

// SetExtraHP replaces the equipment/buff bonus to max health. Lowering the
// maximum below the current value re-clamps the pool.
func (p *Player) SetExtraHP(bonus int) {
	p.mu.Lock()
	p.extraHP = bonus
	messages := []outbound{{p, &packets.MaxPoolUpdate{
		Header:      packets.Header{Type: packets.MaxPoolUpdateType},
		CharacterID: p.ID,
		Pool:        packets.PoolHP,
		Max:         int32(p.maxHP()),
	}}}
	if p.currentHP > p.maxHP() {
		messages = append(messages, p.applyHP(p.maxHP(), 0)...)
	}
	p.mu.Unlock()

	dispatch(messages)
}

func (p *Player) SetExtraMP(bonus int) {
	p.mu.Lock()
	p.extraMP = bonus
	messages := []outbound{{p, &packets.MaxPoolUpdate{
		Header:      packets.Header{Type: packets.MaxPoolUpdateType},
		CharacterID: p.ID,
		Pool:        packets.PoolMP,
		Max:         int32(p.maxMP()),
	}}}
	if p.currentMP > p.maxMP() {
		messages = append(messages, p.applyPool(packets.PoolMP, &p.currentMP, p.maxMP(), p.maxMP())...)
		p.queuePoolSave()
	}
	p.mu.Unlock()

	dispatch(messages)
}

func (p *Player) SetExtraSP(bonus int) {
	p.mu.Lock()
	p.extraSP = bonus
	messages := []outbound{{p, &packets.MaxPoolUpdate{
		Header:      packets.Header{Type: packets.MaxPoolUpdateType},
		CharacterID: p.ID,
		Pool:        packets.PoolSP,
		Max:         int32(p.maxSP()),
	}}}
	if p.currentSP > p.maxSP() {
		messages = append(messages, p.applyPool(packets.PoolSP, &p.currentSP, p.maxSP(), p.maxSP())...)
		p.queuePoolSave()
	}
	p.mu.Unlock()

	dispatch(messages)
}

// applyHP is the health transition. Must be called with mu held.
func (p *Player) applyHP(value int, killerID uint32) []outbound {
	if killerID != 0 {
		p.killerID = killerID
	}

	messages := p.applyPool(packets.PoolHP, &p.currentHP, value, p.maxHP())
	if len(messages) == 0 {
		return nil
	}

	if p.currentHP == 0 && !p.dead {
		p.dead = true
		messages = append(messages, outbound{p, &packets.CharacterDead{
			Header:      packets.Header{Type: packets.CharacterDeadType},
			CharacterID: p.ID,
			KillerID:    p.killerID,
		}})
	}

	p.queuePoolSave()
	return messages
}

// applyPool clamps value into [0, max], stores it through current, and
// returns the pool-changed notification when the value moved. Must be
// called with mu held.
func (p *Player) applyPool(kind uint8, current *int, value, max int) []outbound {
	if value > max {
		value = max
	}
	if value < 0 {
		value = 0
	}
	if *current == value {
		return nil
	}

	*current = value
	return []outbound{{p, &packets.PoolUpdate{
		Header:      packets.Header{Type: packets.PoolUpdateType},
		CharacterID: p.ID,
		Pool:        kind,
		Current:     int32(value),
		Max:         int32(max),
	}}}
}

// KillerID returns the source of the last health reduction.
func (p *Player) KillerID() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killerID
}
