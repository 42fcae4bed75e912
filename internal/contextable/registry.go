// Package contextable is the allow-list for the entity kinds a canvas can
// attach itself to. A canvas stores the kind plus the row id of the linked
// record; each registered kind provides a loader that confirms the linked
// row exists for a given team.
package contextable

import (
	"context"
	"sort"

	"gorm.io/gorm"
)

// Kind names accepted on canvas create/update.
const (
	KindTeam = "team"
)

// Loader reports whether the record identified by id exists and is visible
// to teamID.
type Loader func(ctx context.Context, db *gorm.DB, id uint, teamID uint) (bool, error)

var registry = map[string]Loader{
	KindTeam: loadTeam,
}

// Register adds a kind to the registry. Later registrations win, which lets
// embedding applications override the built-in loaders.
func Register(kind string, loader Loader) {
	registry[kind] = loader
}

// IsValidKind reports whether kind is a registered contextable kind.
func IsValidKind(kind string) bool {
	_, ok := registry[kind]
	return ok
}

// Kinds returns the registered kind names in sorted order.
func Kinds() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Exists resolves (kind, id) through the registered loader. Unknown kinds
// report false without touching the database.
func Exists(ctx context.Context, db *gorm.DB, kind string, id uint, teamID uint) (bool, error) {
	loader, ok := registry[kind]
	if !ok {
		return false, nil
	}
	return loader(ctx, db, id, teamID)
}

func loadTeam(ctx context.Context, db *gorm.DB, id uint, teamID uint) (bool, error) {
	if id != teamID {
		return false, nil
	}
	var count int64
	if err := db.WithContext(ctx).Table("team").Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
