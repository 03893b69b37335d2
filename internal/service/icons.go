package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/creatorstats/internal/domain"
)

// IconService resolves and remembers game icon URLs. The in-memory map is
// process-wide and append-only — icons rarely change, so entries carry no
// TTL. An optional archive persists resolutions across restarts.
type IconService struct {
	source    domain.GamesSource
	archive   domain.IconArchive
	chunkSize int
	logger    *slog.Logger

	mu    sync.RWMutex
	icons map[int64]string
}

// NewIconService creates an icon service, seeding the cache from the archive
// when one is provided.
func NewIconService(source domain.GamesSource, archive domain.IconArchive, chunkSize int, logger *slog.Logger) *IconService {
	if logger == nil {
		logger = slog.Default()
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	s := &IconService{
		source:    source,
		archive:   archive,
		chunkSize: chunkSize,
		logger:    logger,
		icons:     make(map[int64]string),
	}
	if archive != nil {
		if seeded, err := archive.LoadIcons(); err != nil {
			logger.Warn("failed to load icon archive", "error", err)
		} else {
			s.icons = seeded
			logger.Debug("icon archive loaded", "count", len(seeded))
		}
	}
	return s
}

// Lookup returns the cached icon URL for a universe, if known.
func (s *IconService) Lookup(universeID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	url, ok := s.icons[universeID]
	return url, ok
}

// Fill backfills IconURL on every experience. Unknown IDs are resolved in
// fixed-size batches; IDs the batch lookup leaves unresolved fall back to a
// single-id fetch. Entries the upstream cannot resolve end up with an empty
// IconURL rather than blocking the payload.
func (s *IconService) Fill(ctx context.Context, games []domain.Experience) {
	var missing []int64
	for i := range games {
		if url, ok := s.Lookup(games[i].UniverseID); ok {
			games[i].IconURL = url
		} else {
			missing = append(missing, games[i].UniverseID)
		}
	}
	if len(missing) == 0 {
		return
	}

	for _, chunk := range ChunkIDs(missing, s.chunkSize) {
		icons, err := s.source.GameIcons(ctx, chunk)
		if err != nil {
			s.logger.Warn("icon batch lookup failed", "count", len(chunk), "error", err)
			continue
		}
		for id, url := range icons {
			s.remember(id, url)
		}
	}

	// Single-id fallback for anything the batches left unresolved.
	for i := range games {
		if games[i].IconURL != "" {
			continue
		}
		if url, ok := s.Lookup(games[i].UniverseID); ok {
			games[i].IconURL = url
			continue
		}
		url, err := s.source.GameIcon(ctx, games[i].UniverseID)
		if err != nil {
			s.logger.Warn("icon fallback lookup failed", "universeId", games[i].UniverseID, "error", err)
			continue
		}
		if url != "" {
			s.remember(games[i].UniverseID, url)
			games[i].IconURL = url
		}
	}
}

func (s *IconService) remember(universeID int64, url string) {
	s.mu.Lock()
	s.icons[universeID] = url
	s.mu.Unlock()

	if s.archive != nil {
		if err := s.archive.SaveIcon(universeID, url); err != nil {
			s.logger.Warn("failed to persist icon", "universeId", universeID, "error", err)
		}
	}
}
