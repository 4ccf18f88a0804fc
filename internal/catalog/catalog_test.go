package catalog

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/aurelia-server/aurelia/internal/data"
)

func setUpDatabase(t *testing.T) *gorm.DB {
	testDBFile := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(testDBFile))
	if err != nil {
		t.Fatalf("error initializing test database: %s", err)
	}

	if err := data.Migrate(db); err != nil {
		t.Fatalf("error migrating test database: %s", err)
	}
	return db
}

func TestPreloadAndLookup(t *testing.T) {
	db := setUpDatabase(t)

	definitions := []data.ItemDefinition{
		{ItemType: 25, ItemID: 1, MaxCount: 20},
		{ItemType: LapisType, ItemID: 4, ConstHP: 50, ConstMP: 10},
	}
	for i := range definitions {
		if err := db.Create(&definitions[i]).Error; err != nil {
			t.Fatalf("error creating item definition: %v", err)
		}
	}

	catalog := New()
	if err := catalog.Preload(db); err != nil {
		t.Fatalf("Preload() returned an unexpected error: %s", err)
	}

	def, found := catalog.Lookup(25, 1)
	if !found {
		t.Fatal("expected item (25, 1) to be in the catalog")
	}
	if def.MaxCount != 20 {
		t.Errorf("expected max count 20, got %d", def.MaxCount)
	}

	if _, found := catalog.Lookup(25, 99); found {
		t.Error("expected item (25, 99) to be absent from the catalog")
	}
}

func TestLookupGem(t *testing.T) {
	catalog := New()
	catalog.Put(&data.ItemDefinition{ItemType: LapisType, ItemID: 4, ConstHP: 50})

	gem, found := catalog.LookupGem(4)
	if !found {
		t.Fatal("expected gem 4 to resolve through the lapis item type")
	}
	if gem.ConstHP != 50 {
		t.Errorf("expected gem HP bonus 50, got %d", gem.ConstHP)
	}

	// An empty socket never resolves to a definition.
	if _, found := catalog.LookupGem(0); found {
		t.Error("expected gem id 0 to resolve to nothing")
	}
}
