package db

import (
	"context"
	"database/sql"
)

const gameExists = `select count(*) from game where table_id = ?`

func (q *Queries) GameExists(ctx context.Context, tableID int64) (bool, error) {
	row := q.db.QueryRowContext(ctx, gameExists, tableID)
	var count int64
	err := row.Scan(&count)
	return count > 0, err
}

const createGame = `insert into game (
    table_id, game_id, game_name, player_count, winner_name, min_player_elo, stored_at
) values (?, ?, ?, ?, ?, ?, ?)`

type CreateGameParams struct {
	TableID      int64
	GameID       int64
	GameName     string
	PlayerCount  int64
	WinnerName   string
	MinPlayerElo sql.NullFloat64
	StoredAt     int64
}

func (q *Queries) CreateGame(ctx context.Context, arg CreateGameParams) error {
	_, err := q.db.ExecContext(ctx, createGame,
		arg.TableID,
		arg.GameID,
		arg.GameName,
		arg.PlayerCount,
		arg.WinnerName,
		arg.MinPlayerElo,
		arg.StoredAt,
	)
	return err
}

const createPlayer = `insert into player (
    table_id, player_id, position, player_name, race_id, race_name,
    final_score, player_elo, is_winner, rounds
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreatePlayerParams struct {
	TableID    int64
	PlayerID   int64
	Position   int64
	PlayerName string
	RaceID     int64
	RaceName   string
	FinalScore int64
	PlayerElo  sql.NullFloat64
	IsWinner   bool
	Rounds     int64
}

func (q *Queries) CreatePlayer(ctx context.Context, arg CreatePlayerParams) error {
	_, err := q.db.ExecContext(ctx, createPlayer,
		arg.TableID,
		arg.PlayerID,
		arg.Position,
		arg.PlayerName,
		arg.RaceID,
		arg.RaceName,
		arg.FinalScore,
		arg.PlayerElo,
		arg.IsWinner,
		arg.Rounds,
	)
	return err
}

const createBuilding = `insert into building (
    table_id, player_id, round, seq, building_id
) values (?, ?, ?, ?, ?)`

type CreateBuildingParams struct {
	TableID    int64
	PlayerID   int64
	Round      int64
	Seq        int64
	BuildingID int64
}

func (q *Queries) CreateBuilding(ctx context.Context, arg CreateBuildingParams) error {
	_, err := q.db.ExecContext(ctx, createBuilding,
		arg.TableID,
		arg.PlayerID,
		arg.Round,
		arg.Seq,
		arg.BuildingID,
	)
	return err
}

const getGame = `select
    table_id, game_id, game_name, player_count, winner_name, min_player_elo, stored_at
from game where table_id = ?`

func (q *Queries) GetGame(ctx context.Context, tableID int64) (Game, error) {
	row := q.db.QueryRowContext(ctx, getGame, tableID)
	var i Game
	err := row.Scan(
		&i.TableID,
		&i.GameID,
		&i.GameName,
		&i.PlayerCount,
		&i.WinnerName,
		&i.MinPlayerElo,
		&i.StoredAt,
	)
	return i, err
}

const getPlayers = `select
    table_id, player_id, position, player_name, race_id, race_name,
    final_score, player_elo, is_winner, rounds
from player where table_id = ?
order by position`

func (q *Queries) GetPlayers(ctx context.Context, tableID int64) ([]Player, error) {
	rows, err := q.db.QueryContext(ctx, getPlayers, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Player
	for rows.Next() {
		var i Player
		if err := rows.Scan(
			&i.TableID,
			&i.PlayerID,
			&i.Position,
			&i.PlayerName,
			&i.RaceID,
			&i.RaceName,
			&i.FinalScore,
			&i.PlayerElo,
			&i.IsWinner,
			&i.Rounds,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getBuildings = `select
    table_id, player_id, round, seq, building_id
from building where table_id = ?
order by player_id, round, seq`

func (q *Queries) GetBuildings(ctx context.Context, tableID int64) ([]Building, error) {
	rows, err := q.db.QueryContext(ctx, getBuildings, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Building
	for rows.Next() {
		var i Building
		if err := rows.Scan(
			&i.TableID,
			&i.PlayerID,
			&i.Round,
			&i.Seq,
			&i.BuildingID,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countGames = `select count(*) from game`

func (q *Queries) CountGames(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countGames)
	var count int64
	err := row.Scan(&count)
	return count, err
}
