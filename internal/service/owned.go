package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/creatorstats/internal/cache"
	"github.com/mmcdole/creatorstats/internal/domain"
)

// roleKeywords marks group roles that imply development involvement. Role
// taxonomies are freeform text, so matching is a broad case-insensitive
// substring check: a false positive only costs an extra listing fetch, while
// a false negative hides a creator's games entirely.
var roleKeywords = []string{
	"developer",
	"contributor",
	"co-owner",
	"coowner",
	"scripter",
	"builder",
	"modeler",
	"admin",
	"development team",
}

// OwnedService maintains the per-user cache of owned games: the merged,
// icon-enriched union of games owned directly and games owned by groups the
// user develops for. It is the single refresh point — everything else reads
// through it so each user costs at most one fetch sequence per TTL window.
type OwnedService struct {
	source  domain.GamesSource
	icons   *IconService
	profile domain.ProfileStore
	games   *cache.Table[[]domain.GameSummary]
	info    *cache.Table[domain.UserInfo]
	logger  *slog.Logger
}

// NewOwnedService creates the owned-content service. The cache tables are
// injected so wiring code controls TTLs, clocks and metrics.
func NewOwnedService(
	source domain.GamesSource,
	icons *IconService,
	profile domain.ProfileStore,
	games *cache.Table[[]domain.GameSummary],
	info *cache.Table[domain.UserInfo],
	logger *slog.Logger,
) *OwnedService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OwnedService{
		source:  source,
		icons:   icons,
		profile: profile,
		games:   games,
		info:    info,
		logger:  logger,
	}
}

// OwnedGames returns the user's owned-games payload, refreshing it when the
// cached copy is absent or stale. Failures degrade to the stale payload (or
// an empty one) — this never returns an error to the caller.
func (s *OwnedService) OwnedGames(ctx context.Context, userID int64) []domain.GameSummary {
	if payload, ok := s.games.Get(userID); ok {
		s.logger.Debug("owned games cache hit", "userId", userID, "count", len(payload))
		return payload
	}
	return s.refresh(ctx, userID)
}

// refresh performs the full fetch-merge-enrich sequence unconditionally and
// stores the result. When both upstream sources fail outright, the previous
// payload is left in place rather than wiped.
func (s *OwnedService) refresh(ctx context.Context, userID int64) []domain.GameSummary {
	userGames, userErr := s.source.UserGames(ctx, userID)
	if userErr != nil {
		s.logger.Warn("user games fetch failed", "userId", userID, "error", userErr)
	}

	groupGames, groupErr := s.groupGames(ctx, userID)
	if groupErr != nil {
		s.logger.Warn("group games fetch failed", "userId", userID, "error", groupErr)
	}

	if userErr != nil && groupErr != nil {
		if stale, ok := s.games.Peek(userID); ok {
			s.logger.Warn("refresh failed, serving stale payload", "userId", userID)
			return stale
		}
		return nil
	}

	merged := mergeUnique(userGames, groupGames)
	s.icons.Fill(ctx, merged)

	payload := make([]domain.GameSummary, len(merged))
	for i, exp := range merged {
		payload[i] = exp.Summary()
	}
	s.games.Set(userID, payload)
	s.logger.Info("owned games refreshed", "userId", userID, "count", len(payload))
	return payload
}

// groupGames resolves the user's development-eligible groups and concatenates
// their game listings. Individual group fetch failures are skipped; only a
// failure to list memberships at all is reported.
func (s *OwnedService) groupGames(ctx context.Context, userID int64) ([]domain.Experience, error) {
	memberships, err := s.source.UserGroupRoles(ctx, userID)
	if err != nil {
		return nil, err
	}

	var all []domain.Experience
	for _, m := range memberships {
		if !eligibleRole(m) {
			continue
		}
		games, err := s.source.GroupGames(ctx, m.GroupID)
		if err != nil {
			s.logger.Warn("group listing fetch failed", "groupId", m.GroupID, "error", err)
			continue
		}
		all = append(all, games...)
	}
	return all, nil
}

// eligibleRole reports whether a membership implies development involvement.
func eligibleRole(m domain.GroupMembership) bool {
	if m.IsOwner {
		return true
	}
	role := strings.ToLower(m.RoleName)
	for _, keyword := range roleKeywords {
		if strings.Contains(role, keyword) {
			return true
		}
	}
	return false
}

// Owns reports whether the user's currently cached payload contains the
// universe. It is a pure cache lookup and never triggers a fetch.
func (s *OwnedService) Owns(userID, universeID int64) bool {
	_, ok := s.find(userID, universeID)
	return ok
}

func (s *OwnedService) find(userID, universeID int64) (domain.GameSummary, bool) {
	payload, ok := s.games.Peek(userID)
	if !ok {
		return domain.GameSummary{}, false
	}
	for _, game := range payload {
		if game.UniverseID == universeID {
			return game, true
		}
	}
	return domain.GameSummary{}, false
}

// CurrentSelection resolves the profile's selected universe against the
// cached payload. A cache miss forces exactly one refresh before giving up.
func (s *OwnedService) CurrentSelection(ctx context.Context, userID int64) (domain.GameSummary, bool) {
	selected, ok, err := s.profile.SelectedUniverse(userID)
	if err != nil {
		s.logger.Warn("selected universe lookup failed", "userId", userID, "error", err)
		return domain.GameSummary{}, false
	}
	if !ok || selected == 0 {
		return domain.GameSummary{}, false
	}

	if game, ok := s.find(userID, selected); ok {
		return game, true
	}
	s.refresh(ctx, userID)
	return s.find(userID, selected)
}

// Select validates ownership of the universe and persists it as the user's
// current selection. Validation retries once against a fresh payload before
// rejecting, so a selection made right after a new game appears still lands.
func (s *OwnedService) Select(ctx context.Context, userID, universeID int64) error {
	if !s.Owns(userID, universeID) {
		s.refresh(ctx, userID)
		if !s.Owns(userID, universeID) {
			return domain.ErrNotOwned
		}
	}
	if err := s.profile.SetSelectedUniverse(userID, universeID); err != nil {
		return fmt.Errorf("failed to persist selection: %w", err)
	}
	return nil
}

// BasicInfo returns the user's cached profile info, fetching it on first use.
// Entries live until the session ends; fetch failures return a zero value
// without caching so the next call retries.
func (s *OwnedService) BasicInfo(ctx context.Context, userID int64) domain.UserInfo {
	if info, ok := s.info.Get(userID); ok {
		return info
	}
	info, err := s.source.UserInfo(ctx, userID)
	if err != nil {
		s.logger.Warn("user info fetch failed", "userId", userID, "error", err)
		return domain.UserInfo{}
	}
	s.info.Set(userID, info)
	return info
}

// Forget purges the user's cached payload and basic info. Called on session
// teardown.
func (s *OwnedService) Forget(userID int64) {
	s.games.Delete(userID)
	s.info.Delete(userID)
}
