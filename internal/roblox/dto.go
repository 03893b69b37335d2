package roblox

// gamesPage is one page of a paginated game listing (user or group owned).
type gamesPage struct {
	Data           []gameRow `json:"data"`
	NextPageCursor string    `json:"nextPageCursor"`
}

// gameRow is a single listing row. ID is decoded loosely: rows whose ID is
// absent or not coercible to an integer are skipped rather than failing the
// whole page.
type gameRow struct {
	ID          any        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	PlaceVisits any        `json:"placeVisits"`
	RootPlace   *rootPlace `json:"rootPlace"`
}

type rootPlace struct {
	ID any `json:"id"`
}

// groupRolesResponse is the (non-paginated) group memberships document.
type groupRolesResponse struct {
	Data []groupRoleRow `json:"data"`
}

type groupRoleRow struct {
	Group struct {
		ID any `json:"id"`
	} `json:"group"`
	Role struct {
		Name string `json:"name"`
		Rank int    `json:"rank"`
	} `json:"role"`
	IsOwner bool `json:"isOwner"`
}

// iconsResponse is the batch icon lookup document. The single-id variant
// shares the shape, with TargetID omitted.
type iconsResponse struct {
	Data []iconRow `json:"data"`
}

type iconRow struct {
	TargetID any    `json:"targetId"`
	ImageURL string `json:"imageUrl"`
}

// liveStatsResponse is the batch live-counters document. Counter fields are
// decoded loosely; missing or non-numeric values count as zero.
type liveStatsResponse struct {
	Data []liveStatRow `json:"data"`
}

type liveStatRow struct {
	ID      any `json:"id"`
	Playing any `json:"playing"`
	Visits  any `json:"visits"`
}

// userResponse is the basic user info document.
type userResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}
