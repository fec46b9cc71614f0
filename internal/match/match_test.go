package match

import (
	"gaiaharvest/internal/vocab"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaceBuildingPadsRounds(t *testing.T) {
	var p PlayerRecord
	p.PlaceBuilding(0, vocab.Mine)
	p.PlaceBuilding(2, vocab.TradingStation)
	p.PlaceBuilding(2, vocab.Mine)
	p.PlaceBuilding(1, vocab.ResearchLab)

	require.Equal(t, [][]vocab.BuildingID{
		{vocab.Mine},
		{vocab.ResearchLab},
		{vocab.TradingStation, vocab.Mine},
	}, p.BuildingsByRound)
	require.Equal(t, 4, p.BuildingCount())
}

func TestWinnerFirstMaxWins(t *testing.T) {
	require.Equal(t, -1, Winner(nil))

	players := []PlayerRecord{
		{PlayerName: "a", FinalScore: 100},
		{PlayerName: "b", FinalScore: 140},
		{PlayerName: "c", FinalScore: 140},
		{PlayerName: "d", FinalScore: 20},
	}
	require.Equal(t, 1, Winner(players))

	players = []PlayerRecord{
		{PlayerName: "a", FinalScore: 0},
		{PlayerName: "b", FinalScore: 0},
	}
	require.Equal(t, 0, Winner(players))
}

func TestPlayerLookup(t *testing.T) {
	m := ParsedMatch{
		WinnerName: "b",
		Players: []PlayerRecord{
			{PlayerID: 1, PlayerName: "a"},
			{PlayerID: 2, PlayerName: "b"},
		},
	}
	p, ok := m.Player(2)
	require.True(t, ok)
	require.True(t, m.IsWinner(p))

	_, ok = m.Player(3)
	require.False(t, ok)
}
