package repo

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
)

const (
	listingsBucket = "listings"
	bookingsBucket = "bookings"
)

// OpenBolt opens (or creates) a Bolt database at path and ensures every
// bucket the Bolt repos need exists. Callers own the returned *bolt.DB.
func OpenBolt(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("repo.OpenBolt: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{listingsBucket, bookingsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenBolt: create buckets: %w", err)
	}
	return db, nil
}

// getJSON decodes the value stored under key into v. It reports false when
// the key is absent.
func getJSON(b *bolt.Bucket, key []byte, v any) (bool, error) {
	raw := b.Get(key)
	if raw == nil {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

// putJSON encodes v and stores it under key.
func putJSON(b *bolt.Bucket, key []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, raw)
}
