package types

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const uuidMaxAttempts = 5

// assignUUID fills current with a fresh UUIDv7 unless one was supplied.
// v7 keeps external identifiers time-ordered; the existence check retries
// on the (practically unreachable) collision.
func assignUUID(tx *gorm.DB, model interface{}, current *uuid.UUID) error {
	if *current != uuid.Nil {
		return nil
	}
	for attempt := 0; attempt < uuidMaxAttempts; attempt++ {
		u, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate uuid: %w", err)
		}
		var count int64
		if err := tx.Session(&gorm.Session{NewDB: true}).
			Model(model).
			Unscoped().
			Where("uuid = ?", u).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check uuid uniqueness: %w", err)
		}
		if count == 0 {
			*current = u
			return nil
		}
	}
	return fmt.Errorf("could not generate unique uuid after %d attempts", uuidMaxAttempts)
}
