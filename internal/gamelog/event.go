// Package gamelog decodes Board Game Arena match logs. Events are decoded into a
// closed set of variants once, when the packet is unmarshalled, so consumers switch
// on concrete types instead of poking at untyped args.
package gamelog

import (
	"encoding/json"
	"gaiaharvest/internal/vocab"
)

// Event is one of RaceChosen, RoundEnd, GameStateChange, Build, Upgrade or
// Unrecognized.
type Event interface {
	Tag() vocab.EventType
	event()
}

type RaceChosen struct {
	PlayerID   int64
	PlayerName string
	Race       vocab.RaceID
}

type RoundEnd struct{}

type Result struct {
	PlayerID int64
	Name     string
	Score    int64
}

type GameStateChange struct {
	StateID   int64
	StateName string
	// Results is only set for the state carrying the final standings.
	Results []Result
}

// Build places a mine, the building is implied by the event.
type Build struct {
	PlayerID   int64
	PlayerName string
}

type Upgrade struct {
	PlayerID   int64
	PlayerName string
	Building   vocab.BuildingID
}

// Unrecognized is any event whose tag is unknown, or whose args could not be
// decoded for a known tag (DecodeErr is set in that case).
type Unrecognized struct {
	Type      vocab.EventType
	Args      json.RawMessage
	DecodeErr error
}

func (RaceChosen) Tag() vocab.EventType      { return vocab.EventChooseRace }
func (RoundEnd) Tag() vocab.EventType        { return vocab.EventRoundEnd }
func (GameStateChange) Tag() vocab.EventType { return vocab.EventGameStateChange }
func (Build) Tag() vocab.EventType           { return vocab.EventBuild }
func (Upgrade) Tag() vocab.EventType         { return vocab.EventUpgrade }
func (u Unrecognized) Tag() vocab.EventType  { return u.Type }

func (RaceChosen) event()      {}
func (RoundEnd) event()        {}
func (GameStateChange) event() {}
func (Build) event()           {}
func (Upgrade) event()         {}
func (Unrecognized) event()    {}
