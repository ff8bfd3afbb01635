// Package bolt stores user models in an embedded bbolt file, for single
// node deployments without Postgres. One bucket holds one JSON document per
// user, keyed by the big-endian user id.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"myArtMarket/business/bandit"

	bolt "go.etcd.io/bbolt"
)

var bucketModels = []byte("user_models")

// ModelRepository implements bandit.ModelRepository backed by bbolt.
type ModelRepository struct {
	db *bolt.DB
}

var _ bandit.ModelRepository = (*ModelRepository)(nil)

// Open opens (or creates) the database at path.
func Open(path string) (*ModelRepository, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketModels)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bbolt create bucket: %w", err)
	}
	return &ModelRepository{db: db}, nil
}

func (r *ModelRepository) Close() error {
	return r.db.Close()
}

func userKey(userID uint) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(userID))
	return k
}

// LoadModel returns nil, nil if the user has no stored model.
func (r *ModelRepository) LoadModel(ctx context.Context, userID uint) (*bandit.UserModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var raw []byte
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketModels)
		if b == nil {
			return nil
		}
		// bbolt slices are only valid inside the tx
		if v := b.Get(userKey(userID)); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bbolt view: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	var m bandit.UserModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal model: %w", err)
	}
	return &m, nil
}

func (r *ModelRepository) SaveModel(ctx context.Context, userID uint, m *bandit.UserModel) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketModels)
		if err != nil {
			return err
		}
		return b.Put(userKey(userID), raw)
	})
}
