package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/creatorstats/internal/cache"
	"github.com/mmcdole/creatorstats/internal/domain"
)

// TotalsService computes cumulative live counters over a user's owned games.
// Totals are cached with their own, shorter TTL: the set of owned games
// changes rarely, but the counters move constantly.
type TotalsService struct {
	source    domain.GamesSource
	owned     *OwnedService
	totals    *cache.Table[domain.Totals]
	chunkSize int
	logger    *slog.Logger
}

// NewTotalsService creates the totals aggregator. The totals table is
// injected so wiring code controls its TTL, clock and metrics.
func NewTotalsService(
	source domain.GamesSource,
	owned *OwnedService,
	totals *cache.Table[domain.Totals],
	chunkSize int,
	logger *slog.Logger,
) *TotalsService {
	if logger == nil {
		logger = slog.Default()
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &TotalsService{
		source:    source,
		owned:     owned,
		totals:    totals,
		chunkSize: chunkSize,
		logger:    logger,
	}
}

// Totals returns the user's summed visit and playing counters, refreshing on
// a stale cache. Obtaining the owned payload may itself trigger a content
// refresh. Failures degrade to stale totals (or zero) — never an error.
func (s *TotalsService) Totals(ctx context.Context, userID int64) domain.Totals {
	if totals, ok := s.totals.Get(userID); ok {
		s.logger.Debug("totals cache hit", "userId", userID)
		return totals
	}

	payload := s.owned.OwnedGames(ctx, userID)
	ids := make([]int64, len(payload))
	for i, game := range payload {
		ids[i] = game.UniverseID
	}

	var summed domain.Totals
	fetched := false
	for _, chunk := range ChunkIDs(ids, s.chunkSize) {
		stats, err := s.source.LiveStats(ctx, chunk)
		if err != nil {
			s.logger.Warn("live stats batch failed", "userId", userID, "count", len(chunk), "error", err)
			continue
		}
		fetched = true
		for _, stat := range stats {
			summed.Playing += stat.Playing
			summed.Visits += stat.Visits
		}
	}

	if !fetched && len(ids) > 0 {
		if stale, ok := s.totals.Peek(userID); ok {
			s.logger.Warn("totals refresh failed, serving stale totals", "userId", userID)
			return stale
		}
		return domain.Totals{}
	}

	s.totals.Set(userID, summed)
	s.logger.Info("totals refreshed", "userId", userID, "visits", summed.Visits, "playing", summed.Playing)
	return summed
}

// Forget purges the user's cached totals. Called on session teardown.
func (s *TotalsService) Forget(userID int64) {
	s.totals.Delete(userID)
}
