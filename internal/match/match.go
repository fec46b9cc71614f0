// Package match has the normalized record of one finished match, the value the
// parser produces and the store persists.
package match

import "gaiaharvest/internal/vocab"

type PlayerRecord struct {
	PlayerID   int64        `json:"player_id"`
	PlayerName string       `json:"player_name"`
	RaceID     vocab.RaceID `json:"race_id"`
	RaceName   string       `json:"race_name"`
	FinalScore int64        `json:"final_score"`
	// Rating is nil when the platform did not report one.
	Rating *float64 `json:"rating,omitempty"`
	// BuildingsByRound[i] holds the buildings placed in round i (0-based).
	BuildingsByRound [][]vocab.BuildingID `json:"buildings_by_round"`
}

// PlaceBuilding pads the history with empty rounds up to `round` and appends the
// building to that round. Earlier rounds are never touched.
func (p *PlayerRecord) PlaceBuilding(round int, building vocab.BuildingID) {
	for len(p.BuildingsByRound) <= round {
		p.BuildingsByRound = append(p.BuildingsByRound, []vocab.BuildingID{})
	}
	p.BuildingsByRound[round] = append(p.BuildingsByRound[round], building)
}

// BuildingCount is the number of buildings placed over all rounds.
func (p PlayerRecord) BuildingCount() int {
	n := 0
	for _, round := range p.BuildingsByRound {
		n += len(round)
	}
	return n
}

type ParsedMatch struct {
	TableID     int64  `json:"table_id"`
	GameID      int64  `json:"game_id"`
	GameName    string `json:"game_name"`
	PlayerCount int    `json:"player_count"`
	WinnerName  string `json:"winner_name"`
	// MinPlayerElo is the lowest rating among players with one, nil if none had one.
	MinPlayerElo *float64       `json:"min_player_elo,omitempty"`
	Players      []PlayerRecord `json:"players"`
}

// Winner returns the index of the first player with the highest final score,
// or -1 when there are no players.
func Winner(players []PlayerRecord) int {
	winner := -1
	for i, p := range players {
		if winner < 0 || p.FinalScore > players[winner].FinalScore {
			winner = i
		}
	}
	return winner
}

// Player returns the record of the given player id.
func (m ParsedMatch) Player(playerID int64) (PlayerRecord, bool) {
	for _, p := range m.Players {
		if p.PlayerID == playerID {
			return p, true
		}
	}
	return PlayerRecord{}, false
}

func (m ParsedMatch) IsWinner(p PlayerRecord) bool {
	return m.WinnerName != "" && p.PlayerName == m.WinnerName
}
