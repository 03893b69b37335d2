package domain

// Experience represents a single owned game (universe) as assembled from the
// upstream listing endpoints. Instances are rebuilt on every cache refresh and
// never mutated afterwards, except for the icon backfill step.
type Experience struct {
	UniverseID  int64  // Unique catalog identifier
	RootPlaceID int64  // Root place of the universe
	Name        string // Display name
	Description string // Description text
	Visits      int64  // Lifetime place visits (0 when unknown)
	IconURL     string // Filled in by the icon enrichment pass
}

// GameSummary is the lightweight projection of an Experience that callers
// receive. Slices of GameSummary are immutable once cached; a refresh replaces
// the whole slice.
type GameSummary struct {
	UniverseID  int64  `json:"universeId"`
	RootPlaceID int64  `json:"rootPlaceId"`
	IconURL     string `json:"iconUrl"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Visits      int64  `json:"visits"`
}

// Summary projects an Experience into its cached representation.
func (e Experience) Summary() GameSummary {
	return GameSummary{
		UniverseID:  e.UniverseID,
		RootPlaceID: e.RootPlaceID,
		IconURL:     e.IconURL,
		Name:        e.Name,
		Description: e.Description,
		Visits:      e.Visits,
	}
}

// Totals holds the summed live counters across a user's owned games.
type Totals struct {
	Visits  int64 `json:"visits"`
	Playing int64 `json:"playing"`
}

// GroupMembership describes one of a user's group roles, as returned by the
// group-roles endpoint.
type GroupMembership struct {
	GroupID  int64
	RoleName string
	Rank     int
	IsOwner  bool
}

// LiveStat is one row of the batch live-counters endpoint.
type LiveStat struct {
	UniverseID int64
	Playing    int64
	Visits     int64
}

// UserInfo is the basic profile information cached once per session.
type UserInfo struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// Milestone pairs a cumulative-visits threshold with the reward issued when a
// user's totals first reach it.
type Milestone struct {
	Visits int64  `mapstructure:"visits"`
	Badge  string `mapstructure:"badge"`
}
