package roblox

import (
	"encoding/json"
	"strconv"

	"github.com/mmcdole/creatorstats/internal/domain"
)

// mapGames converts listing rows to domain experiences, dropping rows with
// no parseable universe ID.
func mapGames(rows []gameRow) []domain.Experience {
	games := make([]domain.Experience, 0, len(rows))
	for _, row := range rows {
		id, ok := asID(row.ID)
		if !ok {
			continue
		}
		exp := domain.Experience{
			UniverseID:  id,
			Name:        row.Name,
			Description: row.Description,
		}
		if visits, ok := asCount(row.PlaceVisits); ok {
			exp.Visits = visits
		}
		if row.RootPlace != nil {
			if placeID, ok := asID(row.RootPlace.ID); ok {
				exp.RootPlaceID = placeID
			}
		}
		games = append(games, exp)
	}
	return games
}

// asID coerces a loosely decoded JSON value to a positive integer identifier.
func asID(v any) (int64, bool) {
	id, ok := asCount(v)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// asCount coerces a loosely decoded JSON value to a non-negative integer.
// Anything unparseable or negative reports false.
func asCount(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		parsed, err := n.Int64()
		if err != nil || parsed < 0 {
			return 0, false
		}
		return parsed, true
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil || parsed < 0 {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
