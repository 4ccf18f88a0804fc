package data

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gorm.io/gorm"
)

func TestFindCharacter(t *testing.T) {
	db := setUpDatabase(t)

	testCharacter := &Character{
		Name:          "Elwen",
		Level:         30,
		HealthPoints:  120,
		ManaPoints:    400,
		StaminaPoints: 150,
		Gold:          2500,
		Items: []InventoryItem{
			{Bag: 1, Slot: 0, ItemType: 25, ItemID: 1, Count: 3, Quality: 20},
		},
		ActiveBuffs: []ActiveBuff{
			{SkillID: 7, SkillLevel: 2, ResetAt: time.Now().Add(time.Hour).UTC()},
		},
	}

	tests := []struct {
		name     string
		seedData func(db *gorm.DB)
		want     *Character
		wantErr  bool
	}{
		{
			name:     "character does not exist",
			seedData: func(db *gorm.DB) {},
			want:     nil,
			wantErr:  false,
		},
		{
			name: "character exists with inventory and buffs",
			seedData: func(db *gorm.DB) {
				if err := db.Create(testCharacter).Error; err != nil {
					t.Fatalf("error creating character: %v", err)
				}
			},
			want:    testCharacter,
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.seedData(db)

			character, err := FindCharacter(db, testCharacter.ID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FindCharacter() wantErr = %v, error = %v", tt.wantErr, err)
			}

			if diff := cmp.Diff(tt.want, character); diff != "" {
				t.Errorf("character did not match expected; diff:\n%s", diff)
			}
		})
	}
}

func TestPruneExpiredBuffs(t *testing.T) {
	db := setUpDatabase(t)

	testCharacter := &Character{
		Name: "Elwen",
		ActiveBuffs: []ActiveBuff{
			{SkillID: 1, ResetAt: time.Now().Add(-time.Hour).UTC()},
			{SkillID: 2, ResetAt: time.Now().Add(time.Hour).UTC()},
		},
	}
	if err := db.Create(testCharacter).Error; err != nil {
		t.Fatalf("error creating character: %v", err)
	}

	if err := PruneExpiredBuffs(db, testCharacter.ID); err != nil {
		t.Fatalf("PruneExpiredBuffs() returned an unexpected error: %s", err)
	}

	var remaining []ActiveBuff
	if err := db.Where("character_id = ?", testCharacter.ID).Find(&remaining).Error; err != nil {
		t.Fatalf("error reading back buffs: %v", err)
	}

	if len(remaining) != 1 {
		t.Fatalf("expected 1 buff to remain, got %d", len(remaining))
	}
	if remaining[0].SkillID != 2 {
		t.Errorf("expected the unexpired buff (skill 2) to remain, got skill %d", remaining[0].SkillID)
	}
}
