package service

import (
	"context"
	"sync"
	"time"

	"github.com/mmcdole/creatorstats/internal/domain"
)

// fakeSource is an in-memory domain.GamesSource with per-method call counts.
type fakeSource struct {
	mu sync.Mutex

	userGames  map[int64][]domain.Experience
	groupRoles map[int64][]domain.GroupMembership
	groupGames map[int64][]domain.Experience
	liveStats  map[int64]domain.LiveStat
	icons      map[int64]string
	userInfo   map[int64]domain.UserInfo

	errUserGames  error
	errGroupRoles error
	errLiveStats  error
	errIcons      error

	// statsGate, when set, blocks each LiveStats call until a value is sent.
	statsGate chan struct{}

	calls        map[string]int
	statsBatches [][]int64
	iconBatches  [][]int64
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		userGames:  make(map[int64][]domain.Experience),
		groupRoles: make(map[int64][]domain.GroupMembership),
		groupGames: make(map[int64][]domain.Experience),
		liveStats:  make(map[int64]domain.LiveStat),
		icons:      make(map[int64]string),
		userInfo:   make(map[int64]domain.UserInfo),
		calls:      make(map[string]int),
	}
}

func (f *fakeSource) count(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

func (f *fakeSource) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeSource) UserGames(_ context.Context, userID int64) ([]domain.Experience, error) {
	f.count("UserGames")
	if f.errUserGames != nil {
		return nil, f.errUserGames
	}
	return f.userGames[userID], nil
}

func (f *fakeSource) GroupGames(_ context.Context, groupID int64) ([]domain.Experience, error) {
	f.count("GroupGames")
	return f.groupGames[groupID], nil
}

func (f *fakeSource) UserGroupRoles(_ context.Context, userID int64) ([]domain.GroupMembership, error) {
	f.count("UserGroupRoles")
	if f.errGroupRoles != nil {
		return nil, f.errGroupRoles
	}
	return f.groupRoles[userID], nil
}

func (f *fakeSource) GameIcons(_ context.Context, universeIDs []int64) (map[int64]string, error) {
	f.count("GameIcons")
	f.mu.Lock()
	f.iconBatches = append(f.iconBatches, universeIDs)
	f.mu.Unlock()
	if f.errIcons != nil {
		return nil, f.errIcons
	}
	icons := make(map[int64]string)
	for _, id := range universeIDs {
		if url, ok := f.icons[id]; ok {
			icons[id] = url
		}
	}
	return icons, nil
}

func (f *fakeSource) GameIcon(_ context.Context, universeID int64) (string, error) {
	f.count("GameIcon")
	return f.icons[universeID], nil
}

func (f *fakeSource) LiveStats(_ context.Context, universeIDs []int64) ([]domain.LiveStat, error) {
	if f.statsGate != nil {
		<-f.statsGate
	}
	f.count("LiveStats")
	f.mu.Lock()
	f.statsBatches = append(f.statsBatches, universeIDs)
	f.mu.Unlock()
	if f.errLiveStats != nil {
		return nil, f.errLiveStats
	}
	stats := make([]domain.LiveStat, 0, len(universeIDs))
	for _, id := range universeIDs {
		if stat, ok := f.liveStats[id]; ok {
			stats = append(stats, stat)
		}
	}
	return stats, nil
}

func (f *fakeSource) UserInfo(_ context.Context, userID int64) (domain.UserInfo, error) {
	f.count("UserInfo")
	return f.userInfo[userID], nil
}

// fakeProfiles is an in-memory domain.ProfileStore recording update order.
type fakeProfiles struct {
	mu       sync.Mutex
	selected map[int64]int64
	totals   map[int64]domain.Totals
	order    []int64 // user IDs in SetTotals call order
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{
		selected: make(map[int64]int64),
		totals:   make(map[int64]domain.Totals),
	}
}

func (p *fakeProfiles) SelectedUniverse(userID int64) (int64, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.selected[userID]
	return id, ok, nil
}

func (p *fakeProfiles) SetSelectedUniverse(userID, universeID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected[userID] = universeID
	return nil
}

func (p *fakeProfiles) SetTotals(userID int64, totals domain.Totals) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totals[userID] = totals
	p.order = append(p.order, userID)
	return nil
}

func (p *fakeProfiles) updateOrder() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.order...)
}

func (p *fakeProfiles) totalsFor(userID int64) (domain.Totals, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.totals[userID]
	return t, ok
}

// testClock is a manually advanced time source for cache tables.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func exp(id int64, name string, visits int64) domain.Experience {
	return domain.Experience{UniverseID: id, RootPlaceID: id * 10, Name: name, Visits: visits}
}
