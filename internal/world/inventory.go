package world

import (
	"github.com/aurelia-server/aurelia/internal/catalog"
	"github.com/aurelia-server/aurelia/internal/data"
)

// Inventory geometry. Bag 0 holds worn equipment; bags 1..numBags hold
// carried items.
const (
	equipmentBag = 0
	numBags      = 5
	bagSlots     = 24
)

// Item is a live item instance in a player's bags.
type Item struct {
	Bag      uint8
	Slot     uint8
	ItemType uint8
	ItemID   uint8
	Count    uint8
	Quality  uint16
	MaxCount uint8
	Gems     [6]uint32
}

// itemFromRecord builds a live item from its persisted row, resolving the
// stack limit from the catalog.
func itemFromRecord(rec data.InventoryItem, cat *catalog.Catalog) *Item {
	item := &Item{
		Bag:      rec.Bag,
		Slot:     rec.Slot,
		ItemType: rec.ItemType,
		ItemID:   rec.ItemID,
		Count:    rec.Count,
		Quality:  rec.Quality,
		MaxCount: 1,
		Gems:     [6]uint32{rec.Gem1, rec.Gem2, rec.Gem3, rec.Gem4, rec.Gem5, rec.Gem6},
	}

	if cat != nil {
		if def, ok := cat.Lookup(rec.ItemType, rec.ItemID); ok && def.MaxCount > 0 {
			item.MaxCount = def.MaxCount
		}
	}
	return item
}

// gemPoolBonus sums the HP/MP/SP bonuses granted by the gems socketed into
// an item.
func gemPoolBonus(item *Item, cat *catalog.Catalog) (hp, mp, sp int) {
	if cat == nil {
		return 0, 0, 0
	}
	for _, gemID := range item.Gems {
		def, ok := cat.LookupGem(gemID)
		if !ok {
			continue
		}
		hp += int(def.ConstHP)
		mp += int(def.ConstMP)
		sp += int(def.ConstSP)
	}
	return hp, mp, sp
}

// FindItem returns the item at (bag, slot), or nil.
func (p *Player) FindItem(bag, slot uint8) *Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.findItem(bag, slot)
}

// findItem must be called with mu held.
func (p *Player) findItem(bag, slot uint8) *Item {
	for _, item := range p.items {
		if item.Bag == bag && item.Slot == slot {
			return item
		}
	}
	return nil
}

// removeQuantity takes quantity units off the item at (bag, slot) and
// returns the removed portion as a detached item, or nil if the item is
// missing. Taking the full count removes the stack from the inventory.
// Must be called with mu held.
func (p *Player) removeQuantity(bag, slot, quantity uint8) *Item {
	item := p.findItem(bag, slot)
	if item == nil || quantity == 0 {
		return nil
	}

	if quantity > item.Count {
		quantity = item.Count
	}

	if quantity == item.Count {
		for i, it := range p.items {
			if it == item {
				p.items = append(p.items[:i], p.items[i+1:]...)
				break
			}
		}
		detached := *item
		detached.Bag, detached.Slot = 0, 0
		return &detached
	}

	item.Count -= quantity
	detached := *item
	detached.Bag, detached.Slot = 0, 0
	detached.Count = quantity
	return &detached
}

// addItem places a detached item into the first stack with room, spilling
// the remainder into the first free slot. Returns false if every bag is
// full and something was lost; the protocol layer treats that as
// absorbed-but-logged rather than an error.
// Must be called with mu held.
func (p *Player) addItem(item *Item) bool {
	if item == nil || item.Count == 0 {
		return true
	}

	// Merge into existing stacks first.
	for _, existing := range p.items {
		if existing.Bag == equipmentBag {
			continue
		}
		if existing.ItemType != item.ItemType || existing.ItemID != item.ItemID {
			continue
		}
		if existing.Count >= existing.MaxCount {
			continue
		}

		room := existing.MaxCount - existing.Count
		if room >= item.Count {
			existing.Count += item.Count
			item.Count = 0
			return true
		}
		existing.Count = existing.MaxCount
		item.Count -= room
	}

	bag, slot, ok := p.firstFreeSlot()
	if !ok {
		return false
	}

	item.Bag, item.Slot = bag, slot
	p.items = append(p.items, item)
	return true
}

// firstFreeSlot scans the carried bags in order. Must be called with mu held.
func (p *Player) firstFreeSlot() (uint8, uint8, bool) {
	for bag := uint8(1); bag <= numBags; bag++ {
		for slot := uint8(0); slot < bagSlots; slot++ {
			if p.findItem(bag, slot) == nil {
				return bag, slot, true
			}
		}
	}
	return 0, 0, false
}

// Items returns a snapshot of the player's items.
func (p *Player) Items() []Item {
	p.mu.Lock()
	defer p.mu.Unlock()

	items := make([]Item, 0, len(p.items))
	for _, item := range p.items {
		items = append(items, *item)
	}
	return items
}

// AddItem places an item into the player's bags, used by the load path and
// by tests to seed inventories.
func (p *Player) AddItem(item *Item) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if item.Bag != 0 || item.Slot != 0 {
		if p.findItem(item.Bag, item.Slot) == nil {
			p.items = append(p.items, item)
			return true
		}
	}
	return p.addItem(item)
}
