package world

import (
	"sort"
	"time"
)

// Sweep reclaims memory in two passes. First every unmodified chunk idle
// past the TTL is dropped; then, if the cache is still above capacity,
// unmodified chunks go in least-recently-accessed order until it fits.
// Modified chunks are never evicted — they hold unsaved writes and must
// be flushed first — so the capacity bound is strict for unmodified
// chunks and best-effort when dirty chunks alone exceed it. Returns the
// number of chunks removed.
//
// Dropping a chunk from the map never invalidates a *Chunk already held
// by a reader; the chunk simply stops being served to new callers.
func (s *Store) Sweep(now time.Time) int {
	cutoff := now.Add(-s.opts.TTL)

	type candidate struct {
		pos      ChunkPos
		accessed int64
	}

	removed := 0
	var fresh []candidate
	for _, sh := range s.shards {
		sh.mu.Lock()
		for pos, c := range sh.chunks {
			if c.Modified() {
				continue
			}
			if c.LastAccessed().Before(cutoff) {
				delete(sh.chunks, pos)
				removed++
				continue
			}
			fresh = append(fresh, candidate{pos: pos, accessed: c.lastAccessed.Load()})
		}
		sh.mu.Unlock()
	}
	s.count.Sub(int64(removed))

	// LRU pass: the TTL alone cannot bound the cache when everything is
	// recently accessed, so shed the oldest unmodified chunks until the
	// cache fits.
	if over := s.Len() - s.opts.MaxChunks; over > 0 && len(fresh) > 0 {
		sort.Slice(fresh, func(i, j int) bool {
			return fresh[i].accessed < fresh[j].accessed
		})

		dropped := 0
		for _, cand := range fresh {
			if dropped >= over {
				break
			}
			sh := s.shardFor(cand.pos)
			sh.mu.Lock()
			c, ok := sh.chunks[cand.pos]
			// A write or access may have landed since the scan; such
			// chunks stay.
			if ok && !c.Modified() && c.lastAccessed.Load() == cand.accessed {
				delete(sh.chunks, cand.pos)
				dropped++
			}
			sh.mu.Unlock()
		}
		s.count.Sub(int64(dropped))
		removed += dropped
	}

	if removed > 0 {
		s.log.Debug("evicted stale chunks", "removed", removed, "cached", s.Len())
	}
	return removed
}
