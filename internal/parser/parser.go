// Package parser folds a match log into a match.ParsedMatch.
package parser

import (
	"gaiaharvest/internal/components/assert"
	"gaiaharvest/internal/components/telemetry"
	"gaiaharvest/internal/gamelog"
	"gaiaharvest/internal/match"
	"gaiaharvest/internal/scrapers/bga"
	"gaiaharvest/internal/vocab"
)

const (
	report_parse_unknown_player = "parse.unknown-player"
	report_parse_unknown_race   = "parse.unknown-race"
	report_parse_repeated_race  = "parse.repeated-race"
	report_parse_bad_event      = "parse.undecodable-event"
)

type Input struct {
	Summary bga.MatchSummary
	Log     gamelog.Log
	// Detail is optional, it is where ratings come from.
	Detail *bga.MatchDetail
}

type state struct {
	tel     telemetry.API
	tableID int64
	round   int
	players []match.PlayerRecord
}

// find treats id 0 as unknown, it is what a missing id decodes to.
func (s *state) find(playerID int64) *match.PlayerRecord {
	if playerID == 0 {
		return nil
	}
	for i := range s.players {
		if s.players[i].PlayerID == playerID {
			return &s.players[i]
		}
	}
	return nil
}

func (s *state) place(playerID int64, building vocab.BuildingID) {
	p := s.find(playerID)
	if p == nil {
		s.tel.ReportWarning(report_parse_unknown_player, s.tableID, playerID)
		return
	}
	p.PlaceBuilding(s.round, building)
}

func (s *state) apply(event gamelog.Event) {
	switch e := event.(type) {
	case gamelog.RaceChosen:
		if e.PlayerID == 0 {
			s.tel.ReportWarning(report_parse_unknown_player, s.tableID, e.PlayerID)
			return
		}
		raceName := vocab.RaceName(e.Race)
		if !e.Race.Known() {
			s.tel.ReportWarning(report_parse_unknown_race, s.tableID, e.PlayerID, int64(e.Race))
		}
		if existing := s.find(e.PlayerID); existing != nil {
			s.tel.ReportWarning(report_parse_repeated_race, s.tableID, e.PlayerID)
			existing.RaceID = e.Race
			existing.RaceName = raceName
			return
		}
		s.players = append(s.players, match.PlayerRecord{
			PlayerID:         e.PlayerID,
			PlayerName:       e.PlayerName,
			RaceID:           e.Race,
			RaceName:         raceName,
			BuildingsByRound: [][]vocab.BuildingID{},
		})
	case gamelog.RoundEnd:
		s.round++
	case gamelog.GameStateChange:
		for _, result := range e.Results {
			p := s.find(result.PlayerID)
			if p == nil {
				// spectators and malformed rows
				continue
			}
			p.FinalScore = result.Score
		}
	case gamelog.Build:
		s.place(e.PlayerID, vocab.Mine)
	case gamelog.Upgrade:
		if e.Building == 0 {
			s.tel.ReportWarning(report_parse_bad_event, s.tableID, string(vocab.EventUpgrade), e.PlayerID)
			return
		}
		s.place(e.PlayerID, e.Building)
	case gamelog.Unrecognized:
		if e.DecodeErr != nil {
			s.tel.ReportWarning(report_parse_bad_event, s.tableID, string(e.Type), e.DecodeErr)
		}
	}
}

// Parse replays the log in order. It never fails: anomalies (events for players
// that never chose a race, undecodable events) are reported to tel and skipped.
func Parse(in Input, tel telemetry.API) match.ParsedMatch {
	assert.NotNil(tel)

	s := &state{
		tel:     tel,
		tableID: in.Summary.TableID,
		players: []match.PlayerRecord{},
	}
	for _, packet := range in.Log.Packets {
		for _, event := range packet.Events {
			s.apply(event)
		}
	}

	fillNames(s.players, in)
	var minElo *float64
	if in.Detail != nil {
		for i := range s.players {
			rating, ok := in.Detail.Rating(s.players[i].PlayerID)
			if !ok {
				continue
			}
			s.players[i].Rating = &rating
			if minElo == nil || rating < *minElo {
				lowest := rating
				minElo = &lowest
			}
		}
	}

	parsed := match.ParsedMatch{
		TableID:      in.Summary.TableID,
		GameID:       in.Summary.GameID,
		GameName:     in.Summary.GameName,
		PlayerCount:  len(s.players),
		MinPlayerElo: minElo,
		Players:      s.players,
	}
	if winner := match.Winner(s.players); winner >= 0 {
		parsed.WinnerName = s.players[winner].PlayerName
	}
	return parsed
}

// fillNames covers logs whose race events carry no player name.
func fillNames(players []match.PlayerRecord, in Input) {
	for i := range players {
		if players[i].PlayerName != "" {
			continue
		}
		for j, id := range in.Summary.PlayerIDs {
			if id == players[i].PlayerID && j < len(in.Summary.PlayerNames) {
				players[i].PlayerName = in.Summary.PlayerNames[j]
			}
		}
		if players[i].PlayerName != "" || in.Detail == nil {
			continue
		}
		for _, p := range in.Detail.Participants {
			if p.PlayerID == players[i].PlayerID {
				players[i].PlayerName = p.Name
			}
		}
	}
}

// PlayerByID returns the record of one player of a parsed match.
func PlayerByID(parsed match.ParsedMatch, playerID int64) (match.PlayerRecord, bool) {
	return parsed.Player(playerID)
}
