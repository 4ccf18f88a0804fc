package data

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// FindCharacter returns the character record with the given id along with
// its inventory and active buffs, or nil if no character exists.
func FindCharacter(db *gorm.DB, characterID uint) (*Character, error) {
	var character Character
	err := db.
		Preload("Items").
		Preload("ActiveBuffs").
		First(&character, characterID).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("error finding character %d: %w", characterID, err)
	}
	return &character, nil
}

// PruneExpiredBuffs deletes any of the character's persisted buffs whose
// reset time has already passed. Run once when the character is loaded so
// stale buffs never reach the live session.
func PruneExpiredBuffs(db *gorm.DB, characterID uint) error {
	err := db.
		Where("character_id = ? AND reset_at < ?", characterID, time.Now().UTC()).
		Delete(&ActiveBuff{}).
		Error

	if err != nil {
		return fmt.Errorf("error pruning expired buffs for character %d: %w", characterID, err)
	}
	return nil
}

// BuffPruner adapts PruneExpiredBuffs to the collaborator interface the
// world package takes at session construction time.
type BuffPruner struct {
	DB *gorm.DB
}

func (p *BuffPruner) PruneExpiredBuffs(characterID uint) error {
	return PruneExpiredBuffs(p.DB, characterID)
}
