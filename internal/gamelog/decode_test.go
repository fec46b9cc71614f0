package gamelog

import (
	"encoding/json"
	"gaiaharvest/internal/vocab"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const testLog = `{
	"logs": [
		{
			"channel": "/table/t512345678",
			"table_id": "512345678",
			"packet_id": "3",
			"packet_type": "history",
			"time": "1717171717",
			"data": [
				{"uid": "a", "type": "notifyChooseRace", "log": "", "args": {"playerId": "1", "player_name": "alice", "raceId": "3"}},
				{"uid": "b", "type": "notifyChooseRace", "log": "", "args": {"player_id": 2, "playerName": "bob", "raceId": 12}},
				{"uid": "c", "type": "notifyBuild", "log": "", "args": {"playerId": "1", "player_name": "alice", "hex": "4_5"}},
				{"uid": "d", "type": "notifyRoundEnd", "log": "", "args": []},
				{"uid": "e", "type": "notifyUpgrade", "log": "", "args": {"player_id": "2", "buildingId": "6"}},
				{"uid": "f", "type": "simpleNote", "log": "hello", "args": {}}
			]
		},
		{
			"packet_id": 4,
			"time": 1717171800,
			"data": [
				{"type": "gameStateChange", "args": {"id": "99", "name": "gameEnd", "args": {"result": [
					{"id": "1", "name": "alice", "score": "90"},
					{"id": "2", "name": "bob", "score": 120},
					{"id": {"broken": true}}
				]}}},
				{"type": "gameStateChange", "args": {"id": 2, "name": "playerTurn", "args": []}},
				{"type": "notifyUpgrade", "args": "not an object"}
			]
		}
	]
}`

func TestDecodeLog(t *testing.T) {
	var log Log
	err := json.Unmarshal([]byte(testLog), &log)
	require.NoError(t, err)
	require.Len(t, log.Packets, 2)

	first := log.Packets[0]
	require.Equal(t, int64(3), first.ID)
	require.Equal(t, int64(1717171717), first.Time)

	expected := []Event{
		RaceChosen{PlayerID: 1, PlayerName: "alice", Race: vocab.Xenos},
		RaceChosen{PlayerID: 2, PlayerName: "bob", Race: vocab.Bescods},
		Build{PlayerID: 1, PlayerName: "alice"},
		RoundEnd{},
		Upgrade{PlayerID: 2, Building: vocab.ResearchLab},
		Unrecognized{Type: "simpleNote", Args: json.RawMessage(`{}`)},
	}
	if diff := cmp.Diff(expected, first.Events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}

	second := log.Packets[1]
	require.Equal(t, int64(4), second.ID)
	require.Len(t, second.Events, 3)

	end, ok := second.Events[0].(GameStateChange)
	require.True(t, ok)
	require.Equal(t, "gameEnd", end.StateName)
	require.Equal(t, []Result{
		{PlayerID: 1, Name: "alice", Score: 90},
		{PlayerID: 2, Name: "bob", Score: 120},
	}, end.Results)

	turn, ok := second.Events[1].(GameStateChange)
	require.True(t, ok)
	require.Equal(t, int64(2), turn.StateID)
	require.Nil(t, turn.Results)

	broken, ok := second.Events[2].(Unrecognized)
	require.True(t, ok)
	require.Equal(t, vocab.EventUpgrade, broken.Tag())
	require.Error(t, broken.DecodeErr)
}

func TestDecodeEventMissingFields(t *testing.T) {
	event := DecodeEvent(vocab.EventBuild, nil)
	require.Equal(t, Build{}, event)

	event = DecodeEvent(vocab.EventChooseRace, json.RawMessage(`{"player_name": "carol"}`))
	require.Equal(t, RaceChosen{PlayerName: "carol"}, event)
}

func TestDecodeUpgradeWithoutBuilding(t *testing.T) {
	event := DecodeEvent(vocab.EventUpgrade, json.RawMessage(`{"player_id": "1", "player_name": "alice"}`))
	broken, ok := event.(Unrecognized)
	require.True(t, ok)
	require.ErrorIs(t, broken.DecodeErr, errNoBuilding)
}
