package executor

import (
	"github.com/dgraph-io/ristretto/v2"

	"myjql/types"
)

// ResultCache memoizes the row set of `select <b>` between mutations of that
// key. The pager below never evicts, so caching lives here at the query
// layer, keyed by column b.
type ResultCache struct {
	cache *ristretto.Cache[string, []types.Row]
}

func NewResultCache() (*ResultCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []types.Row]{
		NumCounters: 1 << 12,
		MaxCost:     1 << 20,
		BufferItems: 64,
		Cost: func(rows []types.Row) int64 {
			return int64(len(rows)*types.RowSize + 1)
		},
	})
	if err != nil {
		return nil, err
	}
	return &ResultCache{cache: cache}, nil
}

func (rc *ResultCache) Get(key string) ([]types.Row, bool) {
	return rc.cache.Get(key)
}

func (rc *ResultCache) Set(key string, rows []types.Row) {
	rc.cache.Set(key, rows, 0)
}

// Invalidate drops the entry for a key whose rows changed. Deletes ride the
// same async buffer as sets, so wait for the drain: a stale hit after a
// mutation would change what the shell prints.
func (rc *ResultCache) Invalidate(key string) {
	rc.cache.Del(key)
	rc.cache.Wait()
}

// Wait blocks until buffered Sets are applied. Admission is asynchronous;
// tests call this before asserting on cache contents.
func (rc *ResultCache) Wait() {
	rc.cache.Wait()
}

func (rc *ResultCache) Close() {
	rc.cache.Close()
}
