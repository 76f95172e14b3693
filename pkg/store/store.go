// Package store keeps the command history of the REPL in a bbolt database.
package store

import (
	"time"

	bolt "go.etcd.io/bbolt"
	"src.servo.sh/pkg/logutil"
	"src.servo.sh/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

const bucketCmd = "cmd"

// Functions run in one transaction when a database is opened, keyed by what
// they do.
var initDB = map[string](func(*bolt.Tx) error){}

// DBStore is the permanent storage backend.
type DBStore interface {
	storedefs.Store
	Close() error
}

type dbStore struct {
	db *bolt.DB
}

// NewStore creates a DBStore backed by the database file at dbname, creating
// it if needed. It fails if another process holds the database for more than a
// second.
func NewStore(dbname string) (DBStore, error) {
	db, err := bolt.Open(dbname, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return NewStoreFromDB(db)
}

// NewStoreFromDB creates a DBStore from an open database.
func NewStoreFromDB(db *bolt.DB) (DBStore, error) {
	logger.Println("initializing store from", db.Path())
	defer logger.Println("initialized store")
	st := &dbStore{db}

	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				logger.Printf("%s: %v", name, err)
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

// Close closes the underlying database.
func (s *dbStore) Close() error {
	return s.db.Close()
}
