package parser

import (
	"encoding/json"
	"testing"

	"gaiaharvest/internal/components/telemetry"
	"gaiaharvest/internal/gamelog"
	"gaiaharvest/internal/match"
	"gaiaharvest/internal/scrapers/bga"
	"gaiaharvest/internal/vocab"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func packet(id int64, events ...gamelog.Event) gamelog.Packet {
	return gamelog.Packet{ID: id, Events: events}
}

func results(scores ...gamelog.Result) gamelog.GameStateChange {
	return gamelog.GameStateChange{StateID: 99, StateName: "gameEnd", Results: scores}
}

func summary() bga.MatchSummary {
	return bga.MatchSummary{
		TableID:     555,
		GameID:      vocab.GaiaProjectGameID,
		GameName:    "gaiaproject",
		PlayerIDs:   []int64{1, 2},
		PlayerNames: []string{"alice", "bob"},
	}
}

func TestParseTwoPlayerMatch(t *testing.T) {
	tel := &telemetry.Recorder{}
	parsed := Parse(Input{
		Summary: summary(),
		Log: gamelog.Log{Packets: []gamelog.Packet{
			packet(1,
				gamelog.RaceChosen{PlayerID: 1, PlayerName: "alice", Race: vocab.Terrans},
				gamelog.RaceChosen{PlayerID: 2, PlayerName: "bob", Race: vocab.Taklons},
			),
			packet(2, gamelog.Build{PlayerID: 1, PlayerName: "alice"}),
			packet(3, gamelog.RoundEnd{}),
			packet(4, gamelog.Upgrade{PlayerID: 2, PlayerName: "bob", Building: vocab.ResearchLab}),
			packet(5, results(
				gamelog.Result{PlayerID: 1, Score: 90},
				gamelog.Result{PlayerID: 2, Score: 120},
			)),
		}},
	}, tel)

	expected := match.ParsedMatch{
		TableID:     555,
		GameID:      vocab.GaiaProjectGameID,
		GameName:    "gaiaproject",
		PlayerCount: 2,
		WinnerName:  "bob",
		Players: []match.PlayerRecord{
			{
				PlayerID:         1,
				PlayerName:       "alice",
				RaceID:           vocab.Terrans,
				RaceName:         "Terrans",
				FinalScore:       90,
				BuildingsByRound: [][]vocab.BuildingID{{vocab.Mine}},
			},
			{
				PlayerID:         2,
				PlayerName:       "bob",
				RaceID:           vocab.Taklons,
				RaceName:         "Taklons",
				FinalScore:       120,
				BuildingsByRound: [][]vocab.BuildingID{{}, {vocab.ResearchLab}},
			},
		},
	}
	if diff := cmp.Diff(expected, parsed); diff != "" {
		t.Fatal(diff)
	}
	require.Empty(t, tel.Reports("warning", ""))
}

func TestParseFromDecodedLog(t *testing.T) {
	raw := `{"logs":[
		{"packet_id":"1","time":"1","data":[
			{"type":"notifyChooseRace","args":{"player_id":"1","player_name":"alice","raceId":"1"}},
			{"type":"notifyChooseRace","args":{"player_id":"2","player_name":"bob","raceId":"5"}}
		]},
		{"packet_id":"2","time":"2","data":[{"type":"notifyBuild","args":{"player_id":"1","player_name":"alice"}}]},
		{"packet_id":"3","time":"3","data":[{"type":"notifyRoundEnd","args":[]}]},
		{"packet_id":"4","time":"4","data":[
			{"type":"notifyUpgrade","args":{"player_id":"2","player_name":"bob","buildingId":"6"}},
			{"type":"notifyGaiaform","args":{"player_id":"2"}}
		]},
		{"packet_id":"5","time":"5","data":[
			{"type":"gameStateChange","args":{"id":"99","name":"gameEnd","args":{"result":[
				{"id":"1","name":"alice","score":"90"},
				{"id":"2","name":"bob","score":"120"},
				{"id":"77","name":"spectator","score":"5"}
			]}}}
		]}
	]}`
	var log gamelog.Log
	require.NoError(t, json.Unmarshal([]byte(raw), &log))

	parsed := Parse(Input{Summary: summary(), Log: log}, &telemetry.Recorder{})
	require.Equal(t, "bob", parsed.WinnerName)
	require.Equal(t, 2, parsed.PlayerCount)
	require.Equal(t, [][]vocab.BuildingID{{vocab.Mine}}, parsed.Players[0].BuildingsByRound)
	require.Equal(t, [][]vocab.BuildingID{{}, {vocab.ResearchLab}}, parsed.Players[1].BuildingsByRound)
	require.Equal(t, int64(90), parsed.Players[0].FinalScore)
}

func TestParseTies(t *testing.T) {
	parsed := Parse(Input{
		Summary: summary(),
		Log: gamelog.Log{Packets: []gamelog.Packet{
			packet(1,
				gamelog.RaceChosen{PlayerID: 2, PlayerName: "bob", Race: vocab.Ivits},
				gamelog.RaceChosen{PlayerID: 1, PlayerName: "alice", Race: vocab.Xenos},
			),
			packet(2, results(
				gamelog.Result{PlayerID: 1, Score: 150},
				gamelog.Result{PlayerID: 2, Score: 150},
			)),
		}},
	}, &telemetry.Recorder{})

	// the first player to choose a race wins a tie
	require.Equal(t, "bob", parsed.WinnerName)
}

func TestParseAnomalies(t *testing.T) {
	tel := &telemetry.Recorder{}
	parsed := Parse(Input{
		Summary: summary(),
		Log: gamelog.Log{Packets: []gamelog.Packet{
			packet(1, gamelog.Build{PlayerID: 1}),
			packet(2, gamelog.RaceChosen{PlayerID: 1, PlayerName: "alice", Race: vocab.Gleens}),
			packet(3, gamelog.RoundEnd{}, gamelog.RoundEnd{}),
			packet(4,
				gamelog.Upgrade{PlayerID: 3, Building: vocab.PlanetaryInstitute},
				gamelog.Build{PlayerID: 1},
				gamelog.Unrecognized{Type: vocab.EventBuild, DecodeErr: json.Unmarshal([]byte("{"), &struct{}{})},
			),
		}},
	}, tel)

	require.Len(t, parsed.Players, 1)
	// the build before the race event is dropped, rounds 0 and 1 are padding
	require.Equal(t, [][]vocab.BuildingID{{}, {}, {vocab.Mine}}, parsed.Players[0].BuildingsByRound)
	require.Equal(t, "alice", parsed.WinnerName)

	require.Len(t, tel.Reports("warning", report_parse_unknown_player), 2)
	require.Len(t, tel.Reports("warning", report_parse_bad_event), 1)
}

func TestParseEmpty(t *testing.T) {
	parsed := Parse(Input{Summary: summary()}, &telemetry.Recorder{})
	require.Equal(t, "", parsed.WinnerName)
	require.Equal(t, 0, parsed.PlayerCount)
	require.Empty(t, parsed.Players)
	require.Nil(t, parsed.MinPlayerElo)
	require.Equal(t, int64(555), parsed.TableID)
}

func TestParseRatingsAndNames(t *testing.T) {
	low := 1320.0
	high := 1810.5
	tel := &telemetry.Recorder{}
	parsed := Parse(Input{
		Summary: summary(),
		Log: gamelog.Log{Packets: []gamelog.Packet{
			packet(1,
				gamelog.RaceChosen{PlayerID: 1, Race: vocab.Nevlas},
				gamelog.RaceChosen{PlayerID: 2, Race: vocab.Itars},
				gamelog.RaceChosen{PlayerID: 3, Race: vocab.RaceID(42)},
			),
		}},
		Detail: &bga.MatchDetail{
			TableID: 555,
			Participants: []bga.Participant{
				{PlayerID: 1, Name: "alice", Rating: &high},
				{PlayerID: 2, Name: "bob", Rating: &low},
				{PlayerID: 3, Name: "carol"},
			},
		},
	}, tel)

	require.Equal(t, "alice", parsed.Players[0].PlayerName)
	require.Equal(t, "bob", parsed.Players[1].PlayerName)
	require.Equal(t, "carol", parsed.Players[2].PlayerName)
	require.Equal(t, "Unknown Race (42)", parsed.Players[2].RaceName)
	require.Len(t, tel.Reports("warning", report_parse_unknown_race), 1)

	require.Equal(t, high, *parsed.Players[0].Rating)
	require.Nil(t, parsed.Players[2].Rating)
	require.NotNil(t, parsed.MinPlayerElo)
	require.Equal(t, low, *parsed.MinPlayerElo)

	player, ok := PlayerByID(parsed, 2)
	require.True(t, ok)
	require.Equal(t, vocab.Itars, player.RaceID)
	_, ok = PlayerByID(parsed, 9)
	require.False(t, ok)
}

func TestParseUpgradeWithoutBuilding(t *testing.T) {
	raw := `{"logs":[
		{"packet_id":"1","time":"1","data":[
			{"type":"notifyChooseRace","args":{"player_id":"1","player_name":"alice","raceId":"1"}}
		]},
		{"packet_id":"2","time":"2","data":[
			{"type":"notifyUpgrade","args":{"player_id":"1","player_name":"alice"}}
		]}
	]}`
	var log gamelog.Log
	require.NoError(t, json.Unmarshal([]byte(raw), &log))

	tel := &telemetry.Recorder{}
	parsed := Parse(Input{
		Summary: summary(),
		Log: gamelog.Log{Packets: append(log.Packets,
			packet(3, gamelog.Upgrade{PlayerID: 1, PlayerName: "alice"}),
		)},
	}, tel)

	require.Len(t, parsed.Players, 1)
	require.Empty(t, parsed.Players[0].BuildingsByRound)
	require.Len(t, tel.Reports("warning", report_parse_bad_event), 2)
}

func TestParseMissingPlayerID(t *testing.T) {
	tel := &telemetry.Recorder{}
	parsed := Parse(Input{
		Summary: summary(),
		Log: gamelog.Log{Packets: []gamelog.Packet{
			packet(1,
				gamelog.RaceChosen{PlayerName: "ghost", Race: vocab.Geodens},
				gamelog.RaceChosen{PlayerID: 2, PlayerName: "bob", Race: vocab.Firacs},
			),
			packet(2, gamelog.Build{}, gamelog.Upgrade{Building: vocab.TradingStation}),
			packet(3, results(
				gamelog.Result{PlayerID: 0, Score: 200},
				gamelog.Result{PlayerID: 2, Score: 80},
			)),
		}},
	}, tel)

	require.Equal(t, 1, parsed.PlayerCount)
	require.Equal(t, int64(2), parsed.Players[0].PlayerID)
	require.Empty(t, parsed.Players[0].BuildingsByRound)
	require.Equal(t, int64(80), parsed.Players[0].FinalScore)
	require.Equal(t, "bob", parsed.WinnerName)
	require.Len(t, tel.Reports("warning", report_parse_unknown_player), 3)
}
