// The catalog package holds the static item table in memory so that live
// session code can resolve item and gem attributes without touching the
// database.
package catalog

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/aurelia-server/aurelia/internal/data"
)

// Catalog is a read-only lookup of item definitions keyed by (type, typeId).
type Catalog struct {
	definitions *gocache.Cache
}

// New returns an empty catalog. Entries never expire; the static tables only
// change with a server restart.
func New() *Catalog {
	return &Catalog{definitions: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

// Preload reads every item definition into the catalog.
func (c *Catalog) Preload(db *gorm.DB) error {
	var definitions []data.ItemDefinition
	if err := db.Find(&definitions).Error; err != nil {
		return fmt.Errorf("error preloading item definitions: %w", err)
	}

	for i := range definitions {
		def := definitions[i]
		c.definitions.Set(itemKey(def.ItemType, def.ItemID), &def, gocache.NoExpiration)
	}

	return nil
}

// Lookup returns the definition for an item type/id pair, or false if the
// static tables have no such item.
func (c *Catalog) Lookup(itemType, itemID uint8) (*data.ItemDefinition, bool) {
	value, found := c.definitions.Get(itemKey(itemType, itemID))
	if !found {
		return nil, false
	}
	return value.(*data.ItemDefinition), true
}

// LapisType is the item type under which all gems (lapis) are defined.
const LapisType = 30

// LookupGem resolves a gem by its type id.
func (c *Catalog) LookupGem(gemID uint32) (*data.ItemDefinition, bool) {
	if gemID == 0 {
		return nil, false
	}
	return c.Lookup(LapisType, uint8(gemID))
}

// Put inserts a single definition, primarily for seeding tests.
func (c *Catalog) Put(def *data.ItemDefinition) {
	c.definitions.Set(itemKey(def.ItemType, def.ItemID), def, gocache.NoExpiration)
}

func itemKey(itemType, itemID uint8) string {
	return fmt.Sprintf("%d:%d", itemType, itemID)
}
