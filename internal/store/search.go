package store

import (
	"context"
	"fmt"
	"strings"

	"gaiaharvest/internal/match"
	"gaiaharvest/internal/vocab"
)

const (
	DefaultSearchLimit = 100
	// DefaultMaxRound covers the whole game, Gaia Project has 6 rounds.
	DefaultMaxRound = 6
)

// StructureCondition matches a player that placed Structure within the first
// MaxRound rounds. Race narrows it to players of that race, a condition with
// only Race set matches any match where the race was played.
type StructureCondition struct {
	Race      vocab.RaceID
	Structure vocab.BuildingID
	MaxRound  int
}

// SearchRequest filters are combined with AND, zero values do not filter.
// PlayerNames match if any one of them took part (case insensitive substring).
type SearchRequest struct {
	WinnerRace          vocab.RaceID
	WinnerName          string
	MinPlayerElo        float64
	PlayerNames         []string
	PlayerCounts        []int
	StructureConditions []StructureCondition
	// Limit defaults to DefaultSearchLimit.
	Limit int
}

func likeContains(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(s)) + "%"
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// buildSearchQuery returns the statement selecting the matching table ids, newest
// first.
func buildSearchQuery(req SearchRequest) (string, []any) {
	var where []string
	var args []any

	if req.MinPlayerElo > 0 {
		where = append(where, "g.min_player_elo >= ?")
		args = append(args, req.MinPlayerElo)
	}
	if req.WinnerName != "" {
		where = append(where, `lower(g.winner_name) like ? escape '\'`)
		args = append(args, likeContains(req.WinnerName))
	}
	if req.WinnerRace != 0 {
		where = append(where, `exists (
			select 1 from player p
			where p.table_id = g.table_id and p.is_winner = 1 and p.race_id = ?
		)`)
		args = append(args, int64(req.WinnerRace))
	}
	if len(req.PlayerCounts) > 0 {
		where = append(where, fmt.Sprintf("g.player_count in (%s)", placeholders(len(req.PlayerCounts))))
		for _, count := range req.PlayerCounts {
			args = append(args, count)
		}
	}
	if len(req.PlayerNames) > 0 {
		var anyOf []string
		for _, name := range req.PlayerNames {
			anyOf = append(anyOf, `exists (
				select 1 from player p
				where p.table_id = g.table_id and lower(p.player_name) like ? escape '\'
			)`)
			args = append(args, likeContains(name))
		}
		where = append(where, "("+strings.Join(anyOf, " or ")+")")
	}

	for _, cond := range req.StructureConditions {
		if cond.Structure == 0 {
			if cond.Race == 0 {
				continue
			}
			where = append(where, `exists (
				select 1 from player p
				where p.table_id = g.table_id and p.race_id = ?
			)`)
			args = append(args, int64(cond.Race))
			continue
		}

		maxRound := cond.MaxRound
		if maxRound <= 0 {
			maxRound = DefaultMaxRound
		}
		clause := `exists (
			select 1 from building b
			join player p on p.table_id = b.table_id and p.player_id = b.player_id
			where b.table_id = g.table_id and b.building_id = ? and b.round < ?`
		args = append(args, int64(cond.Structure), maxRound)
		if cond.Race != 0 {
			clause += " and p.race_id = ?"
			args = append(args, int64(cond.Race))
		}
		where = append(where, clause+"\n\t\t)")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	query := "select g.table_id from game g"
	if len(where) > 0 {
		query += "\nwhere " + strings.Join(where, "\nand ")
	}
	query += "\norder by g.table_id desc\nlimit ?"
	args = append(args, limit)
	return query, args
}

// Search returns the stored matches satisfying every filter of req, newest
// (highest table id) first.
func (s Store) Search(ctx context.Context, req SearchRequest) ([]match.ParsedMatch, error) {
	query, args := buildSearchQuery(req)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		err := rows.Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	// sqlite only allows one open connection, the rows must be released before the
	// matches are loaded.
	rows.Close()

	out := make([]match.ParsedMatch, 0, len(ids))
	for _, id := range ids {
		parsed, err := s.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load table %d: %w", id, err)
		}
		out = append(out, parsed)
	}
	return out, nil
}
