package storage

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tanglekit/blockcodec/pkg/block"
	"github.com/tanglekit/blockcodec/pkg/log"
	"github.com/tanglekit/blockcodec/pkg/wire"
)

const (
	DefaultCacheSize = 128
	DefaultWorkers   = 8
)

var (
	ErrOutputNotFound = errors.New("output was not found")
	ErrAlreadySpent   = errors.New("output is already spent")
)

var (
	outputPrefix = []byte("output/")
	spentPrefix  = []byte("spent/")
)

func prefixedKey(prefix []byte, id block.OutputID) []byte {
	return append(append([]byte{}, prefix...), id.String()...)
}

func outputKey(id block.OutputID) []byte { return prefixedKey(outputPrefix, id) }

func spentKey(id block.OutputID) []byte { return prefixedKey(spentPrefix, id) }

// OutputStore persists output data records under output/<outputId> keys and indexes
// spent records under spent/<outputId>. A record and its index entry are written together.
type OutputStore struct {
	kv      Iterable
	decoder *block.Decoder
	logger  log.Logger
	cache   *outputCache
	workers int
}

// NewOutputStore returns a store over kv. A nil decoder uses the default decoder.
func NewOutputStore(kv Iterable, decoder *block.Decoder, logger log.Logger) *OutputStore {
	if decoder == nil {
		decoder = block.NewDecoder()
	}
	if logger == nil {
		logger = log.NewSilentLogger()
	}
	return &OutputStore{
		kv:      kv,
		decoder: decoder,
		logger:  logger,
		cache:   newOutputCache(DefaultCacheSize),
		workers: DefaultWorkers,
	}
}

// Put stores data, replacing any record with the same output id.
func (s *OutputStore) Put(data block.OutputData) error {
	encoded, err := wire.Marshal(block.EncodeOutputData(data))
	if err != nil {
		return err
	}
	ops := []writeOp{{key: outputKey(data.OutputID), value: encoded}}
	if data.IsSpent {
		ops = append(ops, writeOp{key: spentKey(data.OutputID), value: []byte{}})
	} else {
		ops = append(ops, writeOp{key: spentKey(data.OutputID), delete: true})
	}
	if err := writeAll(s.kv, ops); err != nil {
		return err
	}
	s.cache.push(data)
	s.logger.Debugf("Stored output %s", data.OutputID)
	return nil
}

// Get returns the record stored for id, or ok false if there is none.
func (s *OutputStore) Get(id block.OutputID) (block.OutputData, bool, error) {
	if cached, exist := s.cache.get(id); exist {
		return cached, true, nil
	}
	encoded, exist, err := s.kv.Get(outputKey(id))
	if err != nil || !exist {
		return block.OutputData{}, false, err
	}
	data, err := s.decode(encoded)
	if err != nil {
		return block.OutputData{}, false, fmt.Errorf("output %s: %w", id, err)
	}
	s.cache.push(data)
	return data, true, nil
}

// Delete removes the record for id. Deleting an absent record is not an error.
func (s *OutputStore) Delete(id block.OutputID) error {
	ops := []writeOp{
		{key: outputKey(id), delete: true},
		{key: spentKey(id), delete: true},
	}
	if err := writeAll(s.kv, ops); err != nil {
		return err
	}
	s.cache.remove(id)
	s.logger.Debugf("Deleted output %s", id)
	return nil
}

// Has returns true if a record is stored for id.
func (s *OutputStore) Has(id block.OutputID) (bool, error) {
	return s.kv.Exist(outputKey(id))
}

// IDs returns the output ids of every stored record in key order.
func (s *OutputStore) IDs() ([]block.OutputID, error) {
	return s.idsWithPrefix(outputPrefix)
}

// SpentIDs returns the output ids of the stored records which are spent.
func (s *OutputStore) SpentIDs() ([]block.OutputID, error) {
	return s.idsWithPrefix(spentPrefix)
}

func (s *OutputStore) idsWithPrefix(prefix []byte) ([]block.OutputID, error) {
	keys, err := s.kv.IterateKey(prefix, -1, false)
	if err != nil {
		return nil, err
	}
	ids := make([]block.OutputID, len(keys))
	for i, key := range keys {
		id, err := block.ParseOutputID(string(key[len(prefix):]))
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		ids[i] = id
	}
	return ids, nil
}

// MarkSpent records that txID spent the output id in the commitment commitmentID.
func (s *OutputStore) MarkSpent(id block.OutputID, txID block.TransactionID, commitmentID block.SlotCommitmentID) error {
	data, exist, err := s.Get(id)
	if err != nil {
		return err
	}
	if !exist {
		return fmt.Errorf("%w: %s", ErrOutputNotFound, id)
	}
	if data.IsSpent {
		return fmt.Errorf("%w: %s", ErrAlreadySpent, id)
	}
	data.IsSpent = true
	data.Metadata.IsSpent = true
	data.Metadata.TransactionIDSpent = &txID
	data.Metadata.CommitmentIDSpent = &commitmentID
	return s.Put(data)
}

// List returns every stored record in output id order. Records are decoded concurrently.
func (s *OutputStore) List(ctx context.Context) ([]block.OutputData, error) {
	pairs, err := s.kv.Iterate(outputPrefix, -1, false)
	if err != nil {
		return nil, err
	}
	result := make([]block.OutputData, len(pairs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for i, pair := range pairs {
		i, pair := i, pair // https://golang.org/doc/faq#closures_and_goroutines
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := s.decode(pair.Value())
			if err != nil {
				return fmt.Errorf("key %s: %w", pair.Key(), err)
			}
			result[i] = data
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	s.logger.Debugf("Listed %d outputs", len(result))
	return result, nil
}

// Unspent returns the stored records which are not spent.
func (s *OutputStore) Unspent(ctx context.Context) ([]block.OutputData, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	unspent := []block.OutputData{}
	for _, data := range all {
		if !data.IsSpent {
			unspent = append(unspent, data)
		}
	}
	return unspent, nil
}

func (s *OutputStore) decode(encoded []byte) (block.OutputData, error) {
	tree, err := wire.Parse(encoded)
	if err != nil {
		return block.OutputData{}, err
	}
	return s.decoder.DecodeOutputData(tree)
}
