// Package store persists parsed matches in sqlite (or libsql) and answers the
// search queries the CLI exposes.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gaiaharvest/internal/components/chrono"
	"gaiaharvest/internal/match"
	"gaiaharvest/internal/store/db"
	"gaiaharvest/internal/vocab"
)

var (
	ErrNotFound      = errors.New("match not found")
	ErrAlreadyStored = errors.New("match is already stored")
)

type Store struct {
	db    *sql.DB
	qry   *db.Queries
	clock chrono.API
}

// NewStore expects db.Schema to be applied already, see sqliteutil.OpenDB.
func NewStore(database *sql.DB, clock chrono.API) Store {
	return Store{
		db:    database,
		qry:   db.New(database),
		clock: clock,
	}
}

func (s Store) Exists(ctx context.Context, tableID int64) (bool, error) {
	return s.qry.GameExists(ctx, tableID)
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

// Store writes the match, its players and their buildings in one transaction.
func (s Store) Store(ctx context.Context, parsed match.ParsedMatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.CreateGame(ctx, db.CreateGameParams{
		TableID:      parsed.TableID,
		GameID:       parsed.GameID,
		GameName:     parsed.GameName,
		PlayerCount:  int64(parsed.PlayerCount),
		WinnerName:   parsed.WinnerName,
		MinPlayerElo: nullFloat(parsed.MinPlayerElo),
		StoredAt:     s.clock.Now().Unix(),
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("table %d: %w", parsed.TableID, ErrAlreadyStored)
		}
		return fmt.Errorf("create game: %w", err)
	}

	for position, p := range parsed.Players {
		err = txqry.CreatePlayer(ctx, db.CreatePlayerParams{
			TableID:    parsed.TableID,
			PlayerID:   p.PlayerID,
			Position:   int64(position),
			PlayerName: p.PlayerName,
			RaceID:     int64(p.RaceID),
			RaceName:   p.RaceName,
			FinalScore: p.FinalScore,
			PlayerElo:  nullFloat(p.Rating),
			IsWinner:   parsed.IsWinner(p),
			Rounds:     int64(len(p.BuildingsByRound)),
		})
		if err != nil {
			return fmt.Errorf("create player %d: %w", p.PlayerID, err)
		}

		for round, buildings := range p.BuildingsByRound {
			for seq, building := range buildings {
				err = txqry.CreateBuilding(ctx, db.CreateBuildingParams{
					TableID:    parsed.TableID,
					PlayerID:   p.PlayerID,
					Round:      int64(round),
					Seq:        int64(seq),
					BuildingID: int64(building),
				})
				if err != nil {
					return fmt.Errorf("create building: %w", err)
				}
			}
		}
	}

	return tx.Commit()
}

// Get loads a stored match back into the shape the parser produced it in.
func (s Store) Get(ctx context.Context, tableID int64) (match.ParsedMatch, error) {
	game, err := s.qry.GetGame(ctx, tableID)
	if errors.Is(err, sql.ErrNoRows) {
		return match.ParsedMatch{}, ErrNotFound
	}
	if err != nil {
		return match.ParsedMatch{}, err
	}
	players, err := s.qry.GetPlayers(ctx, tableID)
	if err != nil {
		return match.ParsedMatch{}, err
	}
	buildings, err := s.qry.GetBuildings(ctx, tableID)
	if err != nil {
		return match.ParsedMatch{}, err
	}

	byPlayer := map[int64][]db.Building{}
	for _, b := range buildings {
		byPlayer[b.PlayerID] = append(byPlayer[b.PlayerID], b)
	}

	records := make([]match.PlayerRecord, len(players))
	for i, p := range players {
		history := make([][]vocab.BuildingID, p.Rounds)
		for round := range history {
			history[round] = []vocab.BuildingID{}
		}
		for _, b := range byPlayer[p.PlayerID] {
			if b.Round >= p.Rounds {
				continue
			}
			history[b.Round] = append(history[b.Round], vocab.BuildingID(b.BuildingID))
		}

		records[i] = match.PlayerRecord{
			PlayerID:         p.PlayerID,
			PlayerName:       p.PlayerName,
			RaceID:           vocab.RaceID(p.RaceID),
			RaceName:         p.RaceName,
			FinalScore:       p.FinalScore,
			Rating:           floatPtr(p.PlayerElo),
			BuildingsByRound: history,
		}
	}

	return match.ParsedMatch{
		TableID:      game.TableID,
		GameID:       game.GameID,
		GameName:     game.GameName,
		PlayerCount:  int(game.PlayerCount),
		WinnerName:   game.WinnerName,
		MinPlayerElo: floatPtr(game.MinPlayerElo),
		Players:      records,
	}, nil
}

func (s Store) Count(ctx context.Context) (int64, error) {
	return s.qry.CountGames(ctx)
}
