package db

import "database/sql"

type Game struct {
	TableID      int64
	GameID       int64
	GameName     string
	PlayerCount  int64
	WinnerName   string
	MinPlayerElo sql.NullFloat64
	StoredAt     int64
}

type Player struct {
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

type Building struct {
	TableID    int64
	PlayerID   int64
	Round      int64
	Seq        int64
	BuildingID int64
}
