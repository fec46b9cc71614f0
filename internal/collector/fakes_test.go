package collector

import (
	"context"
	"fmt"
	"sync"

	"gaiaharvest/internal/gamelog"
	"gaiaharvest/internal/match"
	"gaiaharvest/internal/scrapers/bga"
	"gaiaharvest/internal/vocab"
)

type fakePlatform struct {
	mutex sync.Mutex
	calls []string

	// player id -> page -> summaries
	pages      map[int64]map[int][]bga.MatchSummary
	pageErrs   map[int64]map[int]error
	logErrs    map[int64]error
	detailErrs map[int64]error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		pages:      map[int64]map[int][]bga.MatchSummary{},
		pageErrs:   map[int64]map[int]error{},
		logErrs:    map[int64]error{},
		detailErrs: map[int64]error{},
	}
}

func (f *fakePlatform) setPage(playerID int64, page int, summaries []bga.MatchSummary) {
	if f.pages[playerID] == nil {
		f.pages[playerID] = map[int][]bga.MatchSummary{}
	}
	f.pages[playerID][page] = summaries
}

func (f *fakePlatform) failPage(playerID int64, page int, err error) {
	if f.pageErrs[playerID] == nil {
		f.pageErrs[playerID] = map[int]error{}
	}
	f.pageErrs[playerID][page] = err
}

func (f *fakePlatform) record(call string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakePlatform) Calls() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakePlatform) ListFinishedMatches(ctx context.Context, playerID, gameID int64, page int) ([]bga.MatchSummary, error) {
	f.record(fmt.Sprintf("list %d/%d", playerID, page))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.pageErrs[playerID][page]; err != nil {
		return nil, err
	}
	return f.pages[playerID][page], nil
}

func (f *fakePlatform) FetchMatchLog(ctx context.Context, tableID int64) (gamelog.Log, error) {
	f.record(fmt.Sprintf("log %d", tableID))
	if err := f.logErrs[tableID]; err != nil {
		return gamelog.Log{}, err
	}
	return gamelog.Log{Packets: []gamelog.Packet{
		{ID: 1, Events: []gamelog.Event{
			gamelog.RaceChosen{PlayerID: 1, PlayerName: "alice", Race: vocab.Terrans},
			gamelog.RaceChosen{PlayerID: 2, PlayerName: "bob", Race: vocab.Ambas},
		}},
		{ID: 2, Events: []gamelog.Event{
			gamelog.Build{PlayerID: 1},
			gamelog.GameStateChange{Results: []gamelog.Result{
				{PlayerID: 1, Score: 130},
				{PlayerID: 2, Score: 110},
			}},
		}},
	}}, nil
}

func (f *fakePlatform) FetchMatchDetail(ctx context.Context, tableID int64) (bga.MatchDetail, error) {
	f.record(fmt.Sprintf("detail %d", tableID))
	if err := f.detailErrs[tableID]; err != nil {
		return bga.MatchDetail{}, err
	}
	rating := 1500.0
	return bga.MatchDetail{
		TableID: tableID,
		Participants: []bga.Participant{
			{PlayerID: 1, Name: "alice", Rating: &rating},
			{PlayerID: 2, Name: "bob"},
		},
	}, nil
}

type fakeStorage struct {
	mutex    sync.Mutex
	stored   map[int64]match.ParsedMatch
	storeErr error
}

func newFakeStorage(existing ...int64) *fakeStorage {
	s := &fakeStorage{stored: map[int64]match.ParsedMatch{}}
	for _, id := range existing {
		s.stored[id] = match.ParsedMatch{TableID: id}
	}
	return s
}

func (s *fakeStorage) Exists(ctx context.Context, tableID int64) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.stored[tableID]
	return ok, nil
}

func (s *fakeStorage) Store(ctx context.Context, parsed match.ParsedMatch) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.storeErr != nil {
		return s.storeErr
	}
	s.stored[parsed.TableID] = parsed
	return nil
}

// summaries returns n summaries with consecutive table ids starting at from.
func summaries(from int64, n int) []bga.MatchSummary {
	out := make([]bga.MatchSummary, n)
	for i := range out {
		out[i] = bga.MatchSummary{
			TableID:     from + int64(i),
			GameID:      vocab.GaiaProjectGameID,
			GameName:    "gaiaproject",
			PlayerIDs:   []int64{1, 2},
			PlayerNames: []string{"alice", "bob"},
		}
	}
	return out
}

type recordingPacer struct {
	mutex sync.Mutex
	kinds []CallKind
}

func (p *recordingPacer) AfterCall(ctx context.Context, kind CallKind) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.kinds = append(p.kinds, kind)
	return ctx.Err()
}
