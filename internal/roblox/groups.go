package roblox

import (
	"context"
	"fmt"

	"github.com/mmcdole/creatorstats/internal/domain"
)

// UserGroupRoles returns all of a user's group memberships with role names.
// The endpoint is not paginated.
func (c *Client) UserGroupRoles(ctx context.Context, userID int64) ([]domain.GroupMembership, error) {
	reqURL := fmt.Sprintf("%s/v2/users/%d/groups/roles", c.groups, userID)

	var resp groupRolesResponse
	if err := c.getJSON(ctx, "group_roles", reqURL, &resp); err != nil {
		return nil, err
	}

	memberships := make([]domain.GroupMembership, 0, len(resp.Data))
	for _, row := range resp.Data {
		groupID, ok := asID(row.Group.ID)
		if !ok {
			continue
		}
		memberships = append(memberships, domain.GroupMembership{
			GroupID:  groupID,
			RoleName: row.Role.Name,
			Rank:     row.Role.Rank,
			IsOwner:  row.IsOwner,
		})
	}
	return memberships, nil
}
