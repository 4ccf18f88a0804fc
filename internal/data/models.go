package data

import (
	"time"

	"gorm.io/gorm"
)

// Character is the persisted record for one playable character.
type Character struct {
	gorm.Model

	Name  string `gorm:"uniqueIndex"`
	Level uint16
	Map   uint16

	Strength     uint16
	Dexterity    uint16
	Intelligence uint16
	Wisdom       uint16
	Luck         uint16

	HealthPoints  int
	ManaPoints    int
	StaminaPoints int

	PosX  float32
	PosY  float32
	PosZ  float32
	Angle uint16

	Gold uint32

	Items       []InventoryItem `gorm:"foreignKey:CharacterID"`
	ActiveBuffs []ActiveBuff    `gorm:"foreignKey:CharacterID"`
}

// InventoryItem is one item instance in a character's bags.
type InventoryItem struct {
	gorm.Model

	CharacterID uint `gorm:"index"`

	Bag      uint8
	Slot     uint8
	ItemType uint8
	ItemID   uint8
	Count    uint8
	Quality  uint16

	Gem1 uint32
	Gem2 uint32
	Gem3 uint32
	Gem4 uint32
	Gem5 uint32
	Gem6 uint32
}

// ActiveBuff is a persisted buff with an absolute expiration time.
type ActiveBuff struct {
	gorm.Model

	CharacterID uint `gorm:"index"`
	SkillID     uint16
	SkillLevel  uint8
	ResetAt     time.Time
}

// ItemDefinition is a row of the static item table, preloaded on startup by
// the catalog. Const* fields are the stat bonuses granted by the item when
// it is socketed as a gem.
type ItemDefinition struct {
	gorm.Model

	ItemType uint8 `gorm:"index:idx_item_def,unique"`
	ItemID   uint8 `gorm:"index:idx_item_def,unique"`

	MaxCount uint8

	ConstStr uint16
	ConstDex uint16
	ConstInt uint16
	ConstWis uint16
	ConstLuc uint16
	ConstHP  uint16
	ConstMP  uint16
	ConstSP  uint16

	AttackTime uint8
	Speed      uint8
}
