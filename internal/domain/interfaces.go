package domain

import "context"

// GamesSource provides access to the upstream content, group, thumbnail and
// live-counter endpoints. Implemented by the roblox client; services depend
// on this interface so tests can substitute fakes.
type GamesSource interface {
	// UserGames returns the publicly visible games owned directly by a user,
	// following pagination to completion.
	UserGames(ctx context.Context, userID int64) ([]Experience, error)

	// GroupGames returns the publicly visible games owned by a group,
	// following pagination to completion.
	GroupGames(ctx context.Context, groupID int64) ([]Experience, error)

	// UserGroupRoles returns all of a user's group memberships with roles.
	UserGroupRoles(ctx context.Context, userID int64) ([]GroupMembership, error)

	// GameIcons resolves icon URLs for a batch of universe IDs. The result
	// map may be missing IDs the upstream could not resolve.
	GameIcons(ctx context.Context, universeIDs []int64) (map[int64]string, error)

	// GameIcon resolves a single universe's icon URL.
	GameIcon(ctx context.Context, universeID int64) (string, error)

	// LiveStats returns live playing/visit counters for a batch of universe
	// IDs.
	LiveStats(ctx context.Context, universeIDs []int64) ([]LiveStat, error)

	// UserInfo returns basic profile information for a user.
	UserInfo(ctx context.Context, userID int64) (UserInfo, error)
}

// RewardIssuer is the external badge/reward collaborator. Issuing a reward
// the user already holds must be a no-op on the issuer's side; this subsystem
// may call Award repeatedly for the same milestone.
type RewardIssuer interface {
	Award(ctx context.Context, userID int64, badge string) error
}

// ProfileStore is the persistent per-user profile collaborator: the mutable
// "currently selected universe" field plus the mirrored stat fields the
// refresh worker writes after each totals computation.
type ProfileStore interface {
	SelectedUniverse(userID int64) (int64, bool, error)
	SetSelectedUniverse(userID, universeID int64) error
	SetTotals(userID int64, totals Totals) error
}

// StatsNotifier receives the freshly computed totals when a refresh was
// requested with notification. Implementations live in the outward-facing
// layer (chat messages, UI events); the core only forwards numbers.
type StatsNotifier interface {
	Notify(ctx context.Context, userID int64, totals Totals)
}

// IconArchive persists resolved icon URLs across restarts. Icons rarely
// change, so the archive is append-only with no expiry.
type IconArchive interface {
	LoadIcons() (map[int64]string, error)
	SaveIcon(universeID int64, url string) error
}
