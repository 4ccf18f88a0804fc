package world

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	aurelia "github.com/aurelia-server/aurelia"
	"github.com/aurelia-server/aurelia/internal/catalog"
	"github.com/aurelia-server/aurelia/internal/data"
	"github.com/aurelia-server/aurelia/internal/packets"
	"github.com/aurelia-server/aurelia/internal/server"
)

// World is the live game world: the session registry plus the protocol
// handlers that mutate it. It implements server.Backend, so each connected
// client's read loop feeds decoded packets into Handle from its own
// goroutine.
type World struct {
	name     string
	db       *gorm.DB
	registry *Registry
	catalog  *catalog.Catalog
	queue    UpdateEnqueuer
	pruner   BuffPruner

	party *PartyManager
	trade *TradeManager
}

func New(name string, db *gorm.DB, cat *catalog.Catalog, queue UpdateEnqueuer, pruner BuffPruner) *World {
	registry := NewRegistry()
	return &World{
		name:     name,
		db:       db,
		registry: registry,
		catalog:  cat,
		queue:    queue,
		pruner:   pruner,
		party:    NewPartyManager(registry),
		trade:    NewTradeManager(registry),
	}
}

func (w *World) Name() string { return w.name }

// Registry exposes the live session set to the rest of the server.
func (w *World) Registry() *Registry { return w.registry }

func (w *World) StartSession(c *server.Client) error {
	aurelia.Log.Infof("accepted %s connection from %s", w.name, c.IPAddr())
	return nil
}

// CloseSession unwinds any shared state the disconnecting player was part
// of: their party membership, any open trade, and their registry entry.
func (w *World) CloseSession(c *server.Client) {
	if c.CharacterID == 0 {
		return
	}
	w.RemovePlayer(c.CharacterID)
	c.CharacterID = 0
}

// Handle routes one decoded packet to its protocol handler. Nothing a
// client sends can return an error that tears down another player's state;
// malformed or out-of-order requests are absorbed by the handlers.
func (w *World) Handle(ctx context.Context, c *server.Client, data []byte) error {
	var header packets.Header
	packets.StructFromBytes(data[:packets.HeaderSize], &header)

	if header.Type == packets.EnterWorldType {
		var pkt packets.EnterWorld
		packets.StructFromBytes(data, &pkt)
		return w.handleEnterWorld(c, &pkt)
	}

	player, ok := w.registry.TryGet(c.CharacterID)
	if !ok {
		aurelia.Log.Debugf("dropping packet %04x from %s: no live session", header.Type, c.IPAddr())
		return nil
	}

	switch header.Type {
	case packets.PlayerMoveType:
		var pkt packets.PlayerMove
		packets.StructFromBytes(data, &pkt)
		player.UpdatePosition(pkt.X, pkt.Y, pkt.Z, pkt.Angle, pkt.Save != 0)

	case packets.PartyRequestType:
		var pkt packets.PartyRequest
		packets.StructFromBytes(data, &pkt)
		w.party.HandleRequest(player, &pkt)
	case packets.PartyResponseType:
		var pkt packets.PartyResponse
		packets.StructFromBytes(data, &pkt)
		w.party.HandleResponse(player, &pkt)
	case packets.PartyLeaveType:
		w.party.HandleLeave(player)
	case packets.PartyKickType:
		var pkt packets.PartyKick
		packets.StructFromBytes(data, &pkt)
		w.party.HandleKick(player, &pkt)
	case packets.PartyChangeLeaderType:
		var pkt packets.PartyChangeLeader
		packets.StructFromBytes(data, &pkt)
		w.party.HandleChangeLeader(player, &pkt)

	case packets.TradeRequestType:
		var pkt packets.TradeRequest
		packets.StructFromBytes(data, &pkt)
		w.trade.HandleRequest(player, &pkt)
	case packets.TradeResponseType:
		var pkt packets.TradeResponse
		packets.StructFromBytes(data, &pkt)
		w.trade.HandleResponse(player, &pkt)
	case packets.TradeAddItemType:
		var pkt packets.TradeAddItem
		packets.StructFromBytes(data, &pkt)
		w.trade.HandleAddItem(player, &pkt)
	case packets.TradeAddMoneyType:
		var pkt packets.TradeAddMoney
		packets.StructFromBytes(data, &pkt)
		w.trade.HandleAddMoney(player, &pkt)
	case packets.TradeDecideType:
		var pkt packets.TradeDecide
		packets.StructFromBytes(data, &pkt)
		w.trade.HandleDecide(player, &pkt)
	case packets.TradeFinishType:
		var pkt packets.TradeFinish
		packets.StructFromBytes(data, &pkt)
		w.trade.HandleFinish(player, &pkt)

	default:
		aurelia.Log.Infof("received unknown packet %04x from %s", header.Type, c.IPAddr())
	}
	return nil
}

func (w *World) handleEnterWorld(c *server.Client, pkt *packets.EnterWorld) error {
	if c.CharacterID != 0 {
		return nil
	}

	if _, err := w.LoadPlayer(c, pkt.CharacterID); err != nil {
		aurelia.Log.Warnf("failed to load character %d for %s: %s", pkt.CharacterID, c.IPAddr(), err)
	}
	return nil
}

// LoadPlayer builds a live session from the persisted character record and
// publishes it in the registry. Expired buffs are pruned through the
// collaborator passed in at construction before any state is derived from
// them.
func (w *World) LoadPlayer(c *server.Client, characterID uint32) (*Player, error) {
	record, err := data.FindCharacter(w.db, uint(characterID))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("character %d does not exist", characterID)
	}

	if w.pruner != nil {
		if err := w.pruner.PruneExpiredBuffs(uint(characterID)); err != nil {
			return nil, err
		}
	}

	player := NewPlayer(characterID, record.Name, c, w.queue)
	player.Level = record.Level
	player.posX, player.posY, player.posZ = record.PosX, record.PosY, record.PosZ
	player.angle = record.Angle
	player.gold = record.Gold

	var extraHP, extraMP, extraSP int
	for _, rec := range record.Items {
		item := itemFromRecord(rec, w.catalog)
		player.items = append(player.items, item)

		// Only worn equipment contributes gem bonuses.
		if item.Bag == equipmentBag {
			hp, mp, sp := gemPoolBonus(item, w.catalog)
			extraHP += hp
			extraMP += mp
			extraSP += sp
		}
	}
	player.extraHP, player.extraMP, player.extraSP = extraHP, extraMP, extraSP

	player.currentHP = clamp(record.HealthPoints, player.maxHP())
	player.currentMP = clamp(record.ManaPoints, player.maxMP())
	player.currentSP = clamp(record.StaminaPoints, player.maxSP())
	player.dead = player.currentHP == 0

	w.registry.Register(player)
	c.CharacterID = characterID

	aurelia.Log.Infof("character %d (%s) entered the world", player.ID, player.Name)
	return player, nil
}

// RemovePlayer takes a session out of the world: the registry entry goes
// first so no new protocol step can reach the player, then any party and
// trade relationships are unwound as terminating events.
func (w *World) RemovePlayer(id uint32) {
	player := w.registry.Unregister(id)
	if player == nil {
		return
	}

	w.trade.HandleDisconnect(player)
	w.party.HandleDisconnect(player)

	player.mu.Lock()
	player.queuePoolSave()
	player.enqueue(data.UpdateTask{
		Kind:        data.UpdateCharacterMove,
		CharacterID: uint(id),
		X:           player.posX,
		Y:           player.posY,
		Z:           player.posZ,
		Angle:       player.angle,
	})
	player.sender = nil
	player.mu.Unlock()

	aurelia.Log.Infof("character %d (%s) left the world", player.ID, player.Name)
}

func clamp(value, max int) int {
	if value > max {
		return max
	}
	if value < 0 {
		return 0
	}
	return value
}
