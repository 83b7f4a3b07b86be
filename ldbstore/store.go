package ldbstore

import (
	"bytes"
	"encoding/gob"
	"strconv"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/regretlab/go-cfr"
)

var (
	profilePrefix     = []byte("p/")
	nodePrefix        = []byte("n/")
	iterKey           = []byte("meta/iterations")
	checkpointIterKey = []byte("meta/checkpoint_iterations")
)

// Store is a strategy profile kept in a LevelDB database, keyed by
// InfoSet key. Store implements cfr.Lookup, so a cfr.ByKey can query it
// as a cfr.Strategy.
type Store struct {
	path string
	db   *leveldb.DB

	rOpts *opt.ReadOptions
	wOpts *opt.WriteOptions
}

var _ cfr.Lookup = (*Store)(nil)

// Open opens (or creates) the Store at the given directory path.
func Open(path string, opts *opt.Options) (*Store, error) {
	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %s", path)
	}

	return &Store{
		path: path,
		db:   db,
	}, nil
}

// Close implements io.Closer.
func (s *Store) Close() error {
	return s.db.Close()
}

func profileKey(infoSet string) []byte {
	return append(append([]byte(nil), profilePrefix...), infoSet...)
}

type storedEntry struct {
	Actions  []string
	Strategy []float64
}

// WriteProfile replaces the profile kept in the Store with p.
func (s *Store) WriteProfile(p *cfr.Profile) error {
	batch := new(leveldb.Batch)
	if err := s.deletePrefix(batch, profilePrefix); err != nil {
		return err
	}

	for _, e := range p.Entries {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(storedEntry{e.Actions, e.Strategy}); err != nil {
			return errors.Wrapf(err, "encoding %s", e.InfoSet)
		}

		batch.Put(profileKey(e.InfoSet), buf.Bytes())
	}

	batch.Put(iterKey, []byte(strconv.Itoa(p.Iterations)))
	if err := s.db.Write(batch, s.wOpts); err != nil {
		return errors.Wrapf(err, "writing profile to %s", s.path)
	}

	glog.V(1).Infof("Wrote %d strategies to %s", p.Len(), s.path)
	return nil
}

func (s *Store) deletePrefix(batch *leveldb.Batch, prefix []byte) error {
	iter := s.db.NewIterator(util.BytesPrefix(prefix), s.rOpts)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}

	iter.Release()
	return errors.Wrap(iter.Error(), "iterating over existing entries")
}

// ReadProfile reads the whole profile kept in the Store.
func (s *Store) ReadProfile() (*cfr.Profile, error) {
	iterations := 0
	buf, err := s.db.Get(iterKey, s.rOpts)
	if err == nil {
		iterations, err = strconv.Atoi(string(buf))
		if err != nil {
			return nil, errors.Wrap(err, "parsing iterations")
		}
	} else if err != leveldb.ErrNotFound {
		return nil, errors.Wrap(err, "reading iterations")
	}

	var entries []cfr.ProfileEntry
	iter := s.db.NewIterator(util.BytesPrefix(profilePrefix), s.rOpts)
	for iter.Next() {
		key := string(iter.Key()[len(profilePrefix):])
		e, err := decodeEntry(iter.Value())
		if err != nil {
			iter.Release()
			return nil, errors.Wrapf(err, "decoding %s", key)
		}

		entries = append(entries, cfr.ProfileEntry{
			InfoSet:  key,
			Actions:  e.Actions,
			Strategy: e.Strategy,
		})
	}

	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterating over profile")
	}

	return cfr.NewProfile(iterations, entries), nil
}

func decodeEntry(buf []byte) (storedEntry, error) {
	var e storedEntry
	err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&e)
	return e, err
}

// Lookup implements cfr.Lookup.
func (s *Store) Lookup(key string) ([]float64, bool) {
	buf, err := s.db.Get(profileKey(key), s.rOpts)
	if err != nil {
		if err != leveldb.ErrNotFound {
			panic(err)
		}

		return nil, false
	}

	e, err := decodeEntry(buf)
	if err != nil {
		panic(errors.Wrapf(err, "decoding %s", key))
	}

	return e.Strategy, true
}
