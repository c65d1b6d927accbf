package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/benbeisheim/chess-backend/internal/model"
)

// ErrNotFound is returned by Load for an id that was never archived.
var ErrNotFound = errors.New("game not archived")

const recordPrefix = "game/"

// Archive keeps finished games in BadgerDB, keyed by match id.
type Archive struct {
	db *badger.DB
}

// Open opens the archive stored in dir. An empty dir keeps everything in
// memory.
func Open(dir string) (*Archive, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the database
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func recordKey(id string) []byte {
	return []byte(recordPrefix + id)
}

// Save stores rec, replacing any earlier record with the same id.
func (a *Archive) Save(rec model.Record) error {
	if rec.ID == "" {
		return errors.New("archive: record has no id")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec.ID), data)
	})
}

// Load returns the record archived under id.
func (a *Archive) Load(id string) (model.Record, error) {
	var rec model.Record

	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})

	return rec, err
}

// List returns every archived record, oldest finish first.
func (a *Archive) List() ([]model.Record, error) {
	var records []model.Record

	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec model.Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].EndedAt.Before(records[j].EndedAt)
	})
	return records, nil
}
