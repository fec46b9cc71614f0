package gamelog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"gaiaharvest/internal/vocab"
	"gaiaharvest/pkg/jsonutil"
)

// Log is the full, ordered event log of one match.
type Log struct {
	Packets []Packet `json:"logs"`
}

type Packet struct {
	ID     int64
	Time   int64
	Events []Event
}

type rawPacket struct {
	PacketID jsonutil.Int `json:"packet_id"`
	Time     jsonutil.Int `json:"time"`
	Data     []rawEvent   `json:"data"`
}

type rawEvent struct {
	Type vocab.EventType `json:"type"`
	Args json.RawMessage `json:"args"`
}

func (p *Packet) UnmarshalJSON(data []byte) error {
	var raw rawPacket
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("decode packet: %w", err)
	}

	p.ID = int64(raw.PacketID)
	p.Time = int64(raw.Time)
	p.Events = make([]Event, len(raw.Data))
	for i, e := range raw.Data {
		p.Events[i] = DecodeEvent(e.Type, e.Args)
	}
	return nil
}

// actingPlayer covers both spellings BGA uses for the acting player.
type actingPlayer struct {
	PlayerID    jsonutil.Int `json:"playerId"`
	PlayerIDAlt jsonutil.Int `json:"player_id"`
	Name        string       `json:"player_name"`
	NameAlt     string       `json:"playerName"`
}

func (a actingPlayer) id() int64 {
	if a.PlayerID != 0 {
		return int64(a.PlayerID)
	}
	return int64(a.PlayerIDAlt)
}

func (a actingPlayer) name() string {
	if a.Name != "" {
		return a.Name
	}
	return a.NameAlt
}

type raceArgs struct {
	actingPlayer
	RaceID jsonutil.Int `json:"raceId"`
}

type upgradeArgs struct {
	actingPlayer
	BuildingID jsonutil.Int `json:"buildingId"`
}

type stateArgs struct {
	ID   jsonutil.Int    `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

type resultEntry struct {
	ID    jsonutil.Int `json:"id"`
	Name  string       `json:"name"`
	Score jsonutil.Int `json:"score"`
}

var errNoBuilding = errors.New("upgrade without a building id")

// DecodeEvent never fails, it falls back to Unrecognized.
func DecodeEvent(tag vocab.EventType, args json.RawMessage) Event {
	unrecognized := func(err error) Event {
		return Unrecognized{Type: tag, Args: args, DecodeErr: err}
	}

	switch tag {
	case vocab.EventRoundEnd:
		return RoundEnd{}
	case vocab.EventChooseRace:
		var a raceArgs
		if err := unmarshalArgs(args, &a); err != nil {
			return unrecognized(err)
		}
		return RaceChosen{PlayerID: a.id(), PlayerName: a.name(), Race: vocab.RaceID(a.RaceID)}
	case vocab.EventBuild:
		var a actingPlayer
		if err := unmarshalArgs(args, &a); err != nil {
			return unrecognized(err)
		}
		return Build{PlayerID: a.id(), PlayerName: a.name()}
	case vocab.EventUpgrade:
		var a upgradeArgs
		if err := unmarshalArgs(args, &a); err != nil {
			return unrecognized(err)
		}
		if a.BuildingID == 0 {
			return unrecognized(errNoBuilding)
		}
		return Upgrade{PlayerID: a.id(), PlayerName: a.name(), Building: vocab.BuildingID(a.BuildingID)}
	case vocab.EventGameStateChange:
		var a stateArgs
		if err := unmarshalArgs(args, &a); err != nil {
			return unrecognized(err)
		}
		return GameStateChange{
			StateID:   int64(a.ID),
			StateName: a.Name,
			Results:   decodeResults(a.Args),
		}
	}
	return Unrecognized{Type: tag, Args: args}
}

// unmarshalArgs treats a missing args field and php's empty array as empty args.
func unmarshalArgs(args json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("[]")) {
		return nil
	}
	return json.Unmarshal(trimmed, out)
}

// decodeResults returns nil unless the nested state args hold a result list.
func decodeResults(stateArgs json.RawMessage) []Result {
	var nested struct {
		Result json.RawMessage `json:"result"`
	}
	if unmarshalArgs(stateArgs, &nested) != nil {
		return nil
	}

	var entries []json.RawMessage
	if json.Unmarshal(nested.Result, &entries) != nil {
		return nil
	}

	results := make([]Result, 0, len(entries))
	for _, raw := range entries {
		var entry resultEntry
		// a malformed row is dropped, the rest of the standings still count
		if json.Unmarshal(raw, &entry) != nil {
			continue
		}
		results = append(results, Result{
			PlayerID: int64(entry.ID),
			Name:     entry.Name,
			Score:    int64(entry.Score),
		})
	}
	return results
}
