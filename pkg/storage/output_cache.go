package storage

import (
	"sync"

	"github.com/tanglekit/blockcodec/pkg/block"
)

// outputCache keeps the most recently stored records, evicting the oldest first.
type outputCache struct {
	cached  map[block.OutputID]block.OutputData
	order   []block.OutputID
	maxSize int
	mutex   *sync.RWMutex
}

func newOutputCache(maxSize int) *outputCache {
	return &outputCache{
		mutex:   new(sync.RWMutex),
		maxSize: maxSize,
		cached:  make(map[block.OutputID]block.OutputData),
	}
}

func (c *outputCache) get(id block.OutputID) (block.OutputData, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	data, exist := c.cached[id]
	if !exist {
		return block.OutputData{}, false
	}
	return cloneOutputData(data), true
}

func (c *outputCache) push(data block.OutputData) {
	if c.maxSize <= 0 {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	data = cloneOutputData(data)
	if _, exist := c.cached[data.OutputID]; exist {
		c.cached[data.OutputID] = data
		return
	}
	// remove the oldest one if max size
	if len(c.order) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.cached, oldest)
	}
	c.cached[data.OutputID] = data
	c.order = append(c.order, data.OutputID)
}

func (c *outputCache) remove(id block.OutputID) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, exist := c.cached[id]; !exist {
		return
	}
	delete(c.cached, id)
	for i, cachedID := range c.order {
		if cachedID == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *outputCache) size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.order)
}

func clonePointer[T any](val *T) *T {
	if val == nil {
		return nil
	}
	copied := *val
	return &copied
}

// cloneOutputData copies the pointer fields of data. Output and Address are immutable.
func cloneOutputData(data block.OutputData) block.OutputData {
	data.Chain = clonePointer(data.Chain)
	data.Metadata.CommitmentIDSpent = clonePointer(data.Metadata.CommitmentIDSpent)
	data.Metadata.TransactionIDSpent = clonePointer(data.Metadata.TransactionIDSpent)
	data.Metadata.IncludedCommitmentID = clonePointer(data.Metadata.IncludedCommitmentID)
	return data
}
