package service

import "github.com/mmcdole/creatorstats/internal/domain"

const defaultChunkSize = 100

// ChunkIDs splits ids into consecutive chunks of at most size elements,
// preserving order. A non-positive size falls back to the default batch size.
func ChunkIDs(ids []int64, size int) [][]int64 {
	if size <= 0 {
		size = defaultChunkSize
	}
	if len(ids) == 0 {
		return nil
	}
	chunks := make([][]int64, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// mergeUnique concatenates two experience lists, dropping later occurrences
// of an already-seen universe ID. First-seen order is preserved, so entries
// from a always win ties against b.
func mergeUnique(a, b []domain.Experience) []domain.Experience {
	merged := make([]domain.Experience, 0, len(a)+len(b))
	seen := make(map[int64]struct{}, len(a)+len(b))
	for _, list := range [][]domain.Experience{a, b} {
		for _, exp := range list {
			if _, dup := seen[exp.UniverseID]; dup {
				continue
			}
			seen[exp.UniverseID] = struct{}{}
			merged = append(merged, exp)
		}
	}
	return merged
}
