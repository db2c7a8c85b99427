package blockstore

import (
	"fmt"

	"github.com/boljen/go-bitmap"
)

// Cache is a write-back [BlockStore] that sits in front of another store.
// Blocks are fetched from the backing store the first time they're read, and
// writes stay in memory until [Cache.Flush] is called.
type Cache struct {
	backing      BlockStore
	loadedBlocks bitmap.Bitmap
	dirtyBlocks  bitmap.Bitmap
	data         []byte
}

// NewCache creates an empty cache in front of `backing`.
func NewCache(backing BlockStore) *Cache {
	totalBlocks := int(backing.TotalBlocks())
	return &Cache{
		backing:      backing,
		loadedBlocks: bitmap.New(totalBlocks),
		dirtyBlocks:  bitmap.New(totalBlocks),
		data:         make([]byte, backing.BytesPerBlock()*backing.TotalBlocks()),
	}
}

func (cache *Cache) BytesPerBlock() uint {
	return cache.backing.BytesPerBlock()
}

func (cache *Cache) TotalBlocks() uint {
	return cache.backing.TotalBlocks()
}

// getSlice returns the part of the cache's storage holding block `index`. If the
// returned slice is modified, the block MUST be marked as dirty.
func (cache *Cache) getSlice(index BlockID) []byte {
	bytesPerBlock := cache.BytesPerBlock()
	start := uint(index) * bytesPerBlock
	return cache.data[start : start+bytesPerBlock]
}

// load ensures block `index` is present in the cache.
func (cache *Cache) load(index BlockID) error {
	// Dirty blocks are present by definition, so we don't need to check
	// `dirtyBlocks`.
	if cache.loadedBlocks.Get(int(index)) {
		return nil
	}

	err := cache.backing.ReadBlock(index, cache.getSlice(index))
	if err != nil {
		return fmt.Errorf("failed to load block %d from source: %w", index, err)
	}

	cache.loadedBlocks.Set(int(index), true)
	cache.dirtyBlocks.Set(int(index), false)
	return nil
}

func (cache *Cache) ReadBlock(index BlockID, buffer []byte) error {
	err := checkBlockIO(cache, index, len(buffer))
	if err != nil {
		return err
	}

	err = cache.load(index)
	if err != nil {
		return err
	}
	copy(buffer, cache.getSlice(index))
	return nil
}

// WriteBlock replaces the cached copy of a block and marks it dirty. Nothing is
// written to the backing store until the cache is flushed.
func (cache *Cache) WriteBlock(index BlockID, data []byte) error {
	err := checkBlockIO(cache, index, len(data))
	if err != nil {
		return err
	}

	copy(cache.getSlice(index), data)
	cache.loadedBlocks.Set(int(index), true)
	cache.dirtyBlocks.Set(int(index), true)
	return nil
}

// IsDirty reports whether block `index` has been modified since the last flush.
func (cache *Cache) IsDirty(index BlockID) bool {
	return cache.dirtyBlocks.Get(int(index))
}

// Flush writes out all dirty blocks (and only dirty blocks) to the backing
// store and marks them as clean.
func (cache *Cache) Flush() error {
	for i := 0; i < int(cache.TotalBlocks()); i++ {
		// Skip if the block is clean. This also skips over blocks that aren't
		// loaded, since missing blocks are considered clean.
		if !cache.dirtyBlocks.Get(i) {
			continue
		}

		err := cache.backing.WriteBlock(BlockID(i), cache.getSlice(BlockID(i)))
		if err != nil {
			return fmt.Errorf("failed to flush block %d to storage: %w", i, err)
		}
		cache.dirtyBlocks.Set(i, false)
	}
	return nil
}
