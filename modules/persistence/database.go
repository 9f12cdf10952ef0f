package persistence

import (
	"bytes"
	"errors"
	"path/filepath"
	"sync"

	"github.com/lkarlslund/tagcamps/modules/cli"
	"github.com/ugorji/go/codec"
	"go.etcd.io/bbolt"
)

const Filename = "persistence.bbolt"

var (
	datastore *bbolt.DB
	dbLock    sync.Mutex
	mh        codec.JsonHandle

	ErrNotFound = errors.New("persistence: key not found")
	ErrEmptyID  = errors.New("persistence: empty ID")
)

// Open opens or creates the database at path
func Open(path string) (*bbolt.DB, error) {
	return bbolt.Open(path, 0666, nil)
}

// getDB returns the shared database in the data directory, opening it on first use
func getDB() (*bbolt.DB, error) {
	dbLock.Lock()
	defer dbLock.Unlock()
	if datastore != nil {
		return datastore, nil
	}
	var err error
	datastore, err = Open(filepath.Join(*cli.Datapath, Filename))
	if err != nil {
		datastore = nil
	}
	return datastore, err
}

// Close closes the shared database if it was opened
func Close() error {
	dbLock.Lock()
	defer dbLock.Unlock()
	if datastore == nil {
		return nil
	}
	err := datastore.Close()
	datastore = nil
	return err
}

// Objects must be able to return a unique key
type Identifiable interface {
	ID() string
}

// Objects can be able to have default values, triggered by calling Default
type Defaulter interface {
	Default()
}

type Store[i Identifiable] struct {
	db         *bbolt.DB
	cache      map[string]i
	cacheLock  *sync.Mutex
	bucketname []byte
}

func NewStore[i Identifiable](db *bbolt.DB, bucketname string, cached bool) Store[i] {
	s := Store[i]{
		db:         db,
		bucketname: []byte(bucketname),
	}
	if cached {
		s.cache = make(map[string]i)
		s.cacheLock = &sync.Mutex{}
	}
	return s
}

// GetStorage opens a store on the shared database in the data directory
func GetStorage[i Identifiable](bucketname string, cached bool) (Store[i], error) {
	db, err := getDB()
	if err != nil {
		return Store[i]{}, err
	}
	return NewStore[i](db, bucketname, cached), nil
}

func (s Store[p]) cached(id string) (p, bool) {
	var result p
	if s.cache == nil {
		return result, false
	}
	s.cacheLock.Lock()
	defer s.cacheLock.Unlock()
	result, found := s.cache[id]
	return result, found
}

func (s Store[p]) remember(id string, value p, forget bool) {
	if s.cache == nil {
		return
	}
	s.cacheLock.Lock()
	if forget {
		delete(s.cache, id)
	} else {
		s.cache[id] = value
	}
	s.cacheLock.Unlock()
}

func decode[p any](data []byte) (p, error) {
	var result p
	if isDefaulter, ok := any(&result).(Defaulter); ok {
		isDefaulter.Default()
	}
	err := codec.NewDecoderBytes(data, &mh).Decode(&result)
	return result, err
}

func (s Store[p]) Get(id string) (*p, bool) {
	if rv, found := s.cached(id); found {
		return &rv, true
	}
	var data []byte
	s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucketname)
		if b == nil {
			return nil
		}
		// only valid inside the transaction
		data = bytes.Clone(b.Get([]byte(id)))
		return nil
	})
	if data == nil {
		return nil, false
	}
	result, err := decode[p](data)
	if err != nil {
		return nil, false
	}
	s.remember(id, result, false)
	return &result, true
}

func (s Store[p]) Put(saveme p) error {
	id := saveme.ID()
	if id == "" {
		return ErrEmptyID
	}
	var output []byte
	if err := codec.NewEncoderBytes(&output, &mh).Encode(saveme); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(s.bucketname)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), output)
	})
	if err != nil {
		return err
	}
	s.remember(id, saveme, false)
	return nil
}

func (s Store[p]) Delete(id string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucketname)
		if b == nil || b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
	if err == nil {
		var zero p
		s.remember(id, zero, true)
	}
	return err
}

func (s Store[p]) List() ([]p, error) {
	var result []p
	return result, s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucketname)
		if b == nil {
			return nil
		}
		// Pre-allocate the result slice to avoid re-allocations during iteration
		stats := b.Stats()
		result = make([]p, 0, stats.KeyN)
		return b.ForEach(func(k, v []byte) error {
			data, err := decode[p](v)
			if err != nil {
				return err
			}
			result = append(result, data)
			return nil
		})
	})
}
