package quota

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/incdrops/server/internal/logger"
	bolt "go.etcd.io/bbolt"
)

const usageBucket = "usage"

// implements Cache on a local bbolt file. it is the client-side shadow that
// survives restarts; a failed cache write is logged and otherwise ignored
type BoltCache struct {
	db *bolt.DB
}

// opens (and creates) the cache file at path
func OpenBoltCache(path string) (*BoltCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(usageBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltCache{db: db}, nil
}

func (c *BoltCache) Load(accountID string) (UsageRecord, bool) {
	var rec UsageRecord
	var found bool

	err := c.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(usageBucket)).Get([]byte(accountID))
		if data == nil {
			return nil
		}

		// a corrupt entry reads as a miss
		if err := json.Unmarshal(data, &rec); err != nil || !rec.Valid() {
			return nil
		}

		found = true
		return nil
	})
	if err != nil {
		return UsageRecord{}, false
	}

	return rec, found
}

func (c *BoltCache) Save(accountID string, rec UsageRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}

	err = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(usageBucket)).Put([]byte(accountID), data)
	})
	if err != nil {
		logger.WarnErr(err, "failed to write usage cache", "account_id", accountID)
	}
}

func (c *BoltCache) Forget(accountID string) {
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(usageBucket)).Delete([]byte(accountID))
	})
	if err != nil {
		logger.WarnErr(err, "failed to clear usage cache", "account_id", accountID)
	}
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}
