package roblox

import (
	"context"
	"fmt"
)

const (
	iconSize   = "150x150"
	iconFormat = "Png"
)

// GameIcons resolves icon URLs for a batch of universe IDs. IDs the upstream
// could not resolve are absent from the result map.
func (c *Client) GameIcons(ctx context.Context, universeIDs []int64) (map[int64]string, error) {
	if len(universeIDs) == 0 {
		return map[int64]string{}, nil
	}
	reqURL := fmt.Sprintf("%s/v1/games/icons?universeIds=%s&size=%s&format=%s",
		c.thumbnails, joinIDs(universeIDs), iconSize, iconFormat)

	var resp iconsResponse
	if err := c.getJSON(ctx, "game_icons", reqURL, &resp); err != nil {
		return nil, err
	}

	icons := make(map[int64]string, len(resp.Data))
	for _, row := range resp.Data {
		id, ok := asID(row.TargetID)
		if !ok || row.ImageURL == "" {
			continue
		}
		icons[id] = row.ImageURL
	}
	return icons, nil
}

// GameIcon resolves a single universe's icon URL. The single-id response
// carries no targetId, so the first row wins.
func (c *Client) GameIcon(ctx context.Context, universeID int64) (string, error) {
	reqURL := fmt.Sprintf("%s/v1/games/icons?universeIds=%d&size=%s&format=%s",
		c.thumbnails, universeID, iconSize, iconFormat)

	var resp iconsResponse
	if err := c.getJSON(ctx, "game_icon", reqURL, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "", nil
	}
	return resp.Data[0].ImageURL, nil
}
