package ldbstore

import (
	"strconv"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/regretlab/go-cfr"
	"github.com/regretlab/go-cfr/internal/policy"
)

func nodeKey(infoSet string) []byte {
	return append(append([]byte(nil), nodePrefix...), infoSet...)
}

var _ cfr.Checkpoint = (*Store)(nil)

// WriteCheckpoint replaces the checkpoint kept in the Store with the
// accumulated regrets and strategy weights of every node produced by visit,
// e.g. the VisitNodes method of a solver that has completed iter epochs.
func WriteCheckpoint[I cfr.InfoSet, A cfr.Action](s *Store, iter int, visit func(func(*cfr.InfoSetNode[I, A]))) error {
	batch := new(leveldb.Batch)
	if err := s.deletePrefix(batch, nodePrefix); err != nil {
		return err
	}

	var err error
	visit(func(node *cfr.InfoSetNode[I, A]) {
		if err != nil {
			return
		}

		p := policy.FromSums(node.RegretSum(), node.StrategySum())
		var buf []byte
		buf, err = p.GobEncode()
		if err != nil {
			err = errors.Wrapf(err, "encoding %v", node.InfoSet())
			return
		}

		batch.Put(nodeKey(node.InfoSet().String()), buf)
	})

	if err != nil {
		return err
	}

	batch.Put(checkpointIterKey, []byte(strconv.Itoa(iter)))
	if err := s.db.Write(batch, s.wOpts); err != nil {
		return errors.Wrapf(err, "writing checkpoint to %s", s.path)
	}

	glog.V(1).Infof("Wrote checkpoint of epoch %d to %s", iter, s.path)
	return nil
}

// CheckpointIterations implements cfr.Checkpoint. It fails if no
// checkpoint was ever written to the Store.
func (s *Store) CheckpointIterations() (int, error) {
	buf, err := s.db.Get(checkpointIterKey, s.rOpts)
	if err == leveldb.ErrNotFound {
		return 0, errors.Errorf("no checkpoint in %s", s.path)
	} else if err != nil {
		return 0, errors.Wrap(err, "reading checkpoint iterations")
	}

	iter, err := strconv.Atoi(string(buf))
	return iter, errors.Wrap(err, "parsing checkpoint iterations")
}

// NodeSums implements cfr.Checkpoint.
func (s *Store) NodeSums(key string) (regretSum, strategySum []float64, ok bool, err error) {
	buf, err := s.db.Get(nodeKey(key), s.rOpts)
	if err == leveldb.ErrNotFound {
		return nil, nil, false, nil
	} else if err != nil {
		return nil, nil, false, errors.Wrapf(err, "reading %s", key)
	}

	var p policy.Policy
	if err := p.GobDecode(buf); err != nil {
		return nil, nil, false, errors.Wrapf(err, "decoding %s", key)
	}

	return p.RegretSum(), p.StrategySum(), true, nil
}
