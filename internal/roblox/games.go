package roblox

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/creatorstats/internal/domain"
)

const (
	// accessFilterPublic restricts listings to publicly visible games.
	accessFilterPublic = 2
	pageLimit          = 50
)

// UserGames returns the publicly visible games owned directly by a user.
func (c *Client) UserGames(ctx context.Context, userID int64) ([]domain.Experience, error) {
	baseURL := fmt.Sprintf("%s/v2/users/%d/games?accessFilter=%d&limit=%d&sortOrder=Asc",
		c.games, userID, accessFilterPublic, pageLimit)
	rows, err := c.fetchAllPages(ctx, "user_games", baseURL)
	if err != nil {
		return nil, err
	}
	return mapGames(rows), nil
}

// GroupGames returns the publicly visible games owned by a group.
func (c *Client) GroupGames(ctx context.Context, groupID int64) ([]domain.Experience, error) {
	baseURL := fmt.Sprintf("%s/v2/groups/%d/games?accessFilter=%d&limit=%d&sortOrder=Asc",
		c.games, groupID, accessFilterPublic, pageLimit)
	rows, err := c.fetchAllPages(ctx, "group_games", baseURL)
	if err != nil {
		return nil, err
	}
	return mapGames(rows), nil
}

// LiveStats returns live playing/visit counters for a batch of universe IDs.
// The caller is responsible for chunking; this issues exactly one request.
func (c *Client) LiveStats(ctx context.Context, universeIDs []int64) ([]domain.LiveStat, error) {
	if len(universeIDs) == 0 {
		return nil, nil
	}
	reqURL := fmt.Sprintf("%s/v1/games?universeIds=%s", c.games, joinIDs(universeIDs))

	var resp liveStatsResponse
	if err := c.getJSON(ctx, "live_stats", reqURL, &resp); err != nil {
		return nil, err
	}

	stats := make([]domain.LiveStat, 0, len(resp.Data))
	for _, row := range resp.Data {
		stat := domain.LiveStat{}
		if id, ok := asID(row.ID); ok {
			stat.UniverseID = id
		}
		if playing, ok := asCount(row.Playing); ok {
			stat.Playing = playing
		}
		if visits, ok := asCount(row.Visits); ok {
			stat.Visits = visits
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

// joinIDs renders IDs as the comma-joined list the batch endpoints expect.
func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
