package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// NullableVector stores a Vector as JSON text, with SQL NULL for a missing vector.
type NullableVector struct {
	Vector Vector
}

// Value implements the driver.Valuer interface for database serialization.
func (v NullableVector) Value() (driver.Value, error) {
	if v.Vector == nil {
		return nil, nil
	}
	b, err := json.Marshal(v.Vector)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (v *NullableVector) Scan(value interface{}) error {
	if value == nil {
		v.Vector = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan NullableVector")
		}
		bytes = []byte(str)
	}
	var vec Vector
	if err := json.Unmarshal(bytes, &vec); err != nil {
		return err
	}
	v.Vector = vec
	return nil
}

// EmbeddingCacheEntry is one persisted position of the embedding cache.
// Every row of a snapshot carries the snapshot size so a partially written
// cache can be recognised and discarded.
type EmbeddingCacheEntry struct {
	Position     int            `gorm:"primaryKey;autoIncrement:false" json:"position"`
	Vector       NullableVector `gorm:"type:text" json:"vector"`
	SnapshotSize int            `gorm:"not null" json:"snapshot_size"`
	Model        string         `gorm:"type:text" json:"model"`
	CreatedAt    time.Time      `json:"created_at"`
}

// TableName returns the database table name for EmbeddingCacheEntry.
func (EmbeddingCacheEntry) TableName() string {
	return "embedding_cache_entries"
}
