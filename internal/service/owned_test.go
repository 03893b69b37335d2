package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/creatorstats/internal/cache"
	"github.com/mmcdole/creatorstats/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type ownedFixture struct {
	source   *fakeSource
	profiles *fakeProfiles
	clock    *testClock
	owned    *OwnedService
}

func newOwnedFixture(t *testing.T) *ownedFixture {
	t.Helper()
	source := newFakeSource()
	profiles := newFakeProfiles()
	clock := newTestClock()

	icons := NewIconService(source, nil, 100, discardLogger())
	games := cache.New[[]domain.GameSummary](time.Minute,
		cache.WithClock[[]domain.GameSummary](clock.Now))
	info := cache.New[domain.UserInfo](0)

	return &ownedFixture{
		source:   source,
		profiles: profiles,
		clock:    clock,
		owned:    NewOwnedService(source, icons, profiles, games, info, discardLogger()),
	}
}

func TestOwnedGames_SingleFetchWithinTTL(t *testing.T) {
	f := newOwnedFixture(t)
	f.source.userGames[10] = []domain.Experience{exp(1, "one", 100)}

	first := f.owned.OwnedGames(context.Background(), 10)
	second := f.owned.OwnedGames(context.Background(), 10)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.source.callCount("UserGames"), "second call within TTL must not fetch")
	assert.Equal(t, 1, f.source.callCount("UserGroupRoles"))
}

func TestOwnedGames_RefetchAfterTTL(t *testing.T) {
	f := newOwnedFixture(t)
	f.source.userGames[10] = []domain.Experience{exp(1, "one", 100)}

	f.owned.OwnedGames(context.Background(), 10)
	f.clock.Advance(time.Minute)
	f.owned.OwnedGames(context.Background(), 10)

	assert.Equal(t, 2, f.source.callCount("UserGames"))
}

func TestOwnedGames_MergesGroupGames(t *testing.T) {
	f := newOwnedFixture(t)
	f.source.userGames[10] = []domain.Experience{exp(1, "mine", 100), exp(2, "shared", 20)}
	f.source.groupRoles[10] = []domain.GroupMembership{
		{GroupID: 500, RoleName: "Developer"},
		{GroupID: 501, RoleName: "Fan"},
	}
	f.source.groupGames[500] = []domain.Experience{exp(2, "shared-group", 999), exp(3, "group-only", 30)}
	f.source.groupGames[501] = []domain.Experience{exp(4, "never", 0)}

	payload := f.owned.OwnedGames(context.Background(), 10)

	require.Len(t, payload, 3)
	assert.Equal(t, int64(1), payload[0].UniverseID)
	assert.Equal(t, int64(2), payload[1].UniverseID)
	assert.Equal(t, "shared", payload[1].Name, "user-owned entry wins the collision")
	assert.Equal(t, int64(3), payload[2].UniverseID)

	// Only the eligible group's listing was fetched.
	assert.Equal(t, 1, f.source.callCount("GroupGames"))
}

func TestOwnedGames_FullFailureKeepsStalePayload(t *testing.T) {
	f := newOwnedFixture(t)
	f.source.userGames[10] = []domain.Experience{exp(1, "one", 100)}

	fresh := f.owned.OwnedGames(context.Background(), 10)
	require.Len(t, fresh, 1)

	f.source.errUserGames = errors.New("down")
	f.source.errGroupRoles = errors.New("down")
	f.clock.Advance(2 * time.Minute)

	stale := f.owned.OwnedGames(context.Background(), 10)
	assert.Equal(t, fresh, stale, "upstream failure must serve the stale payload")
}

func TestOwns_NeverFetches(t *testing.T) {
	f := newOwnedFixture(t)
	f.source.userGames[10] = []domain.Experience{exp(1, "one", 100)}

	assert.False(t, f.owned.Owns(10, 1), "no cached payload yet")
	assert.Equal(t, 0, f.source.callCount("UserGames"))

	f.owned.OwnedGames(context.Background(), 10)
	assert.True(t, f.owned.Owns(10, 1))
	assert.False(t, f.owned.Owns(10, 99))
	assert.Equal(t, 1, f.source.callCount("UserGames"))
}

func TestCurrentSelection_RefreshesOnceOnMiss(t *testing.T) {
	f := newOwnedFixture(t)
	f.source.userGames[10] = []domain.Experience{exp(7, "seven", 5)}
	f.profiles.selected[10] = 7

	// Cache empty: the lookup forces one refresh and then resolves.
	game, ok := f.owned.CurrentSelection(context.Background(), 10)
	require.True(t, ok)
	assert.Equal(t, int64(7), game.UniverseID)
	assert.Equal(t, 1, f.source.callCount("UserGames"))
}

func TestCurrentSelection_GivesUpAfterOneRefresh(t *testing.T) {
	f := newOwnedFixture(t)
	f.source.userGames[10] = []domain.Experience{exp(1, "one", 1)}
	f.profiles.selected[10] = 42 // not owned

	_, ok := f.owned.CurrentSelection(context.Background(), 10)
	assert.False(t, ok)
	assert.Equal(t, 1, f.source.callCount("UserGames"), "exactly one forced refresh")
}

func TestCurrentSelection_NoSelection(t *testing.T) {
	f := newOwnedFixture(t)

	_, ok := f.owned.CurrentSelection(context.Background(), 10)
	assert.False(t, ok)
	assert.Equal(t, 0, f.source.callCount("UserGames"), "no selection, no refresh")
}

func TestSelect_ValidatesAgainstFreshPayload(t *testing.T) {
	f := newOwnedFixture(t)
	f.source.userGames[10] = []domain.Experience{exp(3, "three", 1)}

	// Nothing cached: Select refreshes once, finds the game, persists it.
	err := f.owned.Select(context.Background(), 10, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), f.profiles.selected[10])

	err = f.owned.Select(context.Background(), 10, 99)
	assert.ErrorIs(t, err, domain.ErrNotOwned)
	assert.Equal(t, int64(3), f.profiles.selected[10], "rejected selection leaves the old one")
}

func TestBasicInfo_CachedPerSession(t *testing.T) {
	f := newOwnedFixture(t)
	f.source.userInfo[10] = domain.UserInfo{Username: "builderman", DisplayName: "Builderman"}

	info := f.owned.BasicInfo(context.Background(), 10)
	assert.Equal(t, "builderman", info.Username)

	f.owned.BasicInfo(context.Background(), 10)
	assert.Equal(t, 1, f.source.callCount("UserInfo"))

	f.owned.Forget(10)
	f.owned.BasicInfo(context.Background(), 10)
	assert.Equal(t, 2, f.source.callCount("UserInfo"), "teardown purges the info cache")
}

func TestForget_PurgesPayload(t *testing.T) {
	f := newOwnedFixture(t)
	f.source.userGames[10] = []domain.Experience{exp(1, "one", 100)}

	f.owned.OwnedGames(context.Background(), 10)
	require.True(t, f.owned.Owns(10, 1))

	f.owned.Forget(10)
	assert.False(t, f.owned.Owns(10, 1))
}
