package bga

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"gaiaharvest/pkg/jsonutil"
)

// PageSize is the fixed number of matches per history page. A shorter page is the
// last one.
const PageSize = 10

// MatchSummary is one row of a player's finished match history.
type MatchSummary struct {
	TableID  int64
	GameID   int64
	GameName string

	// PlayerIDs, PlayerNames, Scores and Ranks are parallel.
	PlayerIDs   []int64
	PlayerNames []string
	Scores      []int64
	Ranks       []int64

	Start time.Time
	End   time.Time

	// ELO change and resulting ELO of the player whose history was listed.
	EloWin   float64
	EloAfter float64

	Unranked  bool
	NormalEnd bool
	Conceded  bool
}

type Participant struct {
	PlayerID int64
	Name     string
	Rank     int64
	Score    int64
	// Rating is nil when the table did not report one (ex. unranked tables).
	Rating *float64
}

// MatchDetail is the extended table information, it carries ratings the history
// listing does not.
type MatchDetail struct {
	TableID      int64
	GameID       int64
	GameName     string
	Participants []Participant
}

// Rating returns the rating of a participant, if known.
func (d MatchDetail) Rating(playerID int64) (float64, bool) {
	for _, p := range d.Participants {
		if p.PlayerID == playerID && p.Rating != nil {
			return *p.Rating, true
		}
	}
	return 0, false
}

type PlayerRef struct {
	ID     int64
	Name   string
	Rating *float64
}

type RankingMode string

const (
	RankingElo   RankingMode = "elo"
	RankingArena RankingMode = "arena"
)

// envelope is what every json endpoint answers with. status is 1 on success,
// anything else comes with an error message.
type envelope struct {
	Status jsonutil.Int    `json:"status"`
	Error  string          `json:"error"`
	Code   jsonutil.Int    `json:"code"`
	Data   json.RawMessage `json:"data"`
}

type loginResponse struct {
	Success  jsonutil.Bool `json:"success"`
	Username string        `json:"username"`
	UserID   jsonutil.Int  `json:"user_id"`
}

type rawTable struct {
	TableID     jsonutil.Int   `json:"table_id"`
	GameName    string         `json:"game_name"`
	GameID      jsonutil.Int   `json:"game_id"`
	Start       jsonutil.Int   `json:"start"`
	End         jsonutil.Int   `json:"end"`
	Concede     jsonutil.Bool  `json:"concede"`
	Unranked    jsonutil.Bool  `json:"unranked"`
	NormalEnd   jsonutil.Bool  `json:"normalend"`
	Players     string         `json:"players"`
	PlayerNames string         `json:"player_names"`
	Scores      string         `json:"scores"`
	Ranks       string         `json:"ranks"`
	EloWin      jsonutil.Float `json:"elo_win"`
	EloAfter    jsonutil.Float `json:"elo_after"`
}

type getGamesResponse struct {
	Tables []rawTable `json:"tables"`
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// splitInts parses a comma separated list, unparsable entries become 0 so the
// list stays parallel to the others.
func splitInts(s string) []int64 {
	parts := splitList(s)
	if parts == nil {
		return nil
	}
	out := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		out[i] = n
	}
	return out
}

func unixOrZero(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func (t rawTable) summary() MatchSummary {
	return MatchSummary{
		TableID:     int64(t.TableID),
		GameID:      int64(t.GameID),
		GameName:    t.GameName,
		PlayerIDs:   splitInts(t.Players),
		PlayerNames: splitList(t.PlayerNames),
		Scores:      splitInts(t.Scores),
		Ranks:       splitInts(t.Ranks),
		Start:       unixOrZero(int64(t.Start)),
		End:         unixOrZero(int64(t.End)),
		EloWin:      t.EloWin.Value,
		EloAfter:    t.EloAfter.Value,
		Unranked:    bool(t.Unranked),
		NormalEnd:   bool(t.NormalEnd),
		Conceded:    bool(t.Concede),
	}
}

type rawTableParticipant struct {
	ID       jsonutil.Int   `json:"id"`
	Fullname string         `json:"fullname"`
	Rank     jsonutil.Int   `json:"rank"`
	Elo      jsonutil.Float `json:"elo"`
}

type rawResultPlayer struct {
	PlayerID jsonutil.Int `json:"player_id"`
	Name     string       `json:"name"`
	Score    jsonutil.Int `json:"score"`
	GameRank jsonutil.Int `json:"gamerank"`
}

type tableInfosResponse struct {
	ID       jsonutil.Int                   `json:"id"`
	GameID   jsonutil.Int                   `json:"game_id"`
	GameName string                         `json:"game_name"`
	Players  map[string]rawTableParticipant `json:"players"`
	Result   struct {
		Players []rawResultPlayer `json:"player"`
	} `json:"result"`
}

func (r tableInfosResponse) detail() MatchDetail {
	results := map[int64]rawResultPlayer{}
	for _, p := range r.Result.Players {
		results[int64(p.PlayerID)] = p
	}

	participants := make([]Participant, 0, len(r.Players))
	for key, p := range r.Players {
		id := int64(p.ID)
		if id == 0 {
			id, _ = strconv.ParseInt(key, 10, 64)
		}
		participant := Participant{
			PlayerID: id,
			Name:     p.Fullname,
			Rank:     int64(p.Rank),
		}
		if p.Elo.Valid {
			rating := p.Elo.Value
			participant.Rating = &rating
		}
		if result, ok := results[id]; ok {
			participant.Score = int64(result.Score)
			if result.GameRank != 0 {
				participant.Rank = int64(result.GameRank)
			}
			if participant.Name == "" {
				participant.Name = result.Name
			}
		}
		participants = append(participants, participant)
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].PlayerID < participants[j].PlayerID
	})

	return MatchDetail{
		TableID:      int64(r.ID),
		GameID:       int64(r.GameID),
		GameName:     r.GameName,
		Participants: participants,
	}
}

type rawPlayerRef struct {
	ID       jsonutil.Int   `json:"id"`
	Fullname string         `json:"fullname"`
	Name     string         `json:"name"`
	Ranking  jsonutil.Float `json:"ranking"`
}

func (p rawPlayerRef) ref() PlayerRef {
	name := p.Fullname
	if name == "" {
		name = p.Name
	}
	ref := PlayerRef{ID: int64(p.ID), Name: name}
	if p.Ranking.Valid {
		rating := p.Ranking.Value
		ref.Rating = &rating
	}
	return ref
}

type findPlayerResponse struct {
	Players []rawPlayerRef `json:"players"`
}

type rankingResponse struct {
	Ranks []rawPlayerRef `json:"ranks"`
}
