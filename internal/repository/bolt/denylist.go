package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"todo-api/internal/repository"
)

var revokedBucket = []byte("revoked_tokens")

// Denylist keeps revoked token ids in a bolt file, keyed by jti with the
// token expiry as value.
type Denylist struct {
	db  *bolt.DB
	now func() time.Time
}

// OpenDenylist opens (or creates) the denylist file at path.
func OpenDenylist(path string) (*Denylist, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create denylist dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open denylist: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(revokedBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create denylist bucket: %w", err)
	}

	return &Denylist{db: db, now: time.Now}, nil
}

// Revoke stores tokenID until expiresAt and drops entries that already expired.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return fmt.Errorf("token id is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	now := d.now()
	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(revokedBucket)

		var expired [][]byte
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if len(v) == 8 && !time.Unix(int64(binary.BigEndian.Uint64(v)), 0).After(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return fmt.Errorf("purge revoked token: %w", err)
			}
		}

		value := make([]byte, 8)
		binary.BigEndian.PutUint64(value, uint64(expiresAt.Unix()))
		if err := b.Put([]byte(tokenID), value); err != nil {
			return fmt.Errorf("store revoked token: %w", err)
		}
		return nil
	})
}

func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var revoked bool
	err := d.db.View(func(tx *bolt.Tx) error {
		revoked = tx.Bucket(revokedBucket).Get([]byte(tokenID)) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("lookup revoked token: %w", err)
	}
	return revoked, nil
}

func (d *Denylist) Close() error {
	return d.db.Close()
}

var _ repository.TokenDenylist = (*Denylist)(nil)
