package roblox

import (
	"context"
	"fmt"

	"github.com/mmcdole/creatorstats/internal/domain"
)

// UserInfo returns basic profile information for a user.
func (c *Client) UserInfo(ctx context.Context, userID int64) (domain.UserInfo, error) {
	reqURL := fmt.Sprintf("%s/v1/users/%d", c.users, userID)

	var resp userResponse
	if err := c.getJSON(ctx, "user_info", reqURL, &resp); err != nil {
		return domain.UserInfo{}, err
	}
	return domain.UserInfo{Username: resp.Name, DisplayName: resp.DisplayName}, nil
}
