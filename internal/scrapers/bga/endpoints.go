package bga

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"gaiaharvest/internal/gamelog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// ListFinishedMatches returns one page (1-based) of a player's finished matches of
// the given game. A page shorter than PageSize is the last one.
func (c *Client) ListFinishedMatches(ctx context.Context, playerID, gameID int64, page int) ([]MatchSummary, error) {
	ctx, span := tracer.Start(ctx, "client:ListFinishedMatches", trace.WithAttributes(
		attribute.Int64("player_id", playerID),
		attribute.Int64("game_id", gameID),
		attribute.Int("page", page),
	))
	defer span.End()

	if page < 1 {
		return nil, fail(span, fmt.Errorf("page must be >= 1, got %d", page))
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	err := c.requireSession()
	if err != nil {
		return nil, fail(span, err)
	}

	err = c.visit(ctx, "/gamestats", url.Values{
		"player":  {itoa(playerID)},
		"game_id": {itoa(gameID)},
	})
	if err != nil {
		c.report(report_client_list_matches, fmt.Errorf("landing page: %w", err), playerID, page)
		return nil, fail(span, err)
	}

	var res getGamesResponse
	err = c.getJSON(ctx, "/gamestats/gamestats/getGames.html", url.Values{
		"player":      {itoa(playerID)},
		"opponent_id": {"0"},
		"game_id":     {itoa(gameID)},
		"finished":    {"1"},
		"page":        {strconv.Itoa(page)},
		"updateStats": {"0"},
	}, &res)
	if err != nil {
		c.report(report_client_list_matches, fmt.Errorf("fetch: %w", err), playerID, page)
		return nil, fail(span, err)
	}

	out := make([]MatchSummary, len(res.Tables))
	for i, t := range res.Tables {
		out[i] = t.summary()
	}
	return out, nil
}

// FetchMatchLog returns the raw event log of a table.
func (c *Client) FetchMatchLog(ctx context.Context, tableID int64) (gamelog.Log, error) {
	ctx, span := tracer.Start(ctx, "client:FetchMatchLog", trace.WithAttributes(
		attribute.Int64("table_id", tableID),
	))
	defer span.End()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	err := c.requireSession()
	if err != nil {
		return gamelog.Log{}, fail(span, err)
	}

	err = c.visit(ctx, "/gamereview", url.Values{"table": {itoa(tableID)}})
	if err != nil {
		c.report(report_client_match_log, fmt.Errorf("landing page: %w", err), tableID)
		return gamelog.Log{}, fail(span, err)
	}

	var log gamelog.Log
	err = c.getJSON(ctx, "/archive/archive/logs.html", url.Values{
		"table":      {itoa(tableID)},
		"translated": {"true"},
	}, &log)
	if err != nil {
		c.report(report_client_match_log, fmt.Errorf("fetch: %w", err), tableID)
		return gamelog.Log{}, fail(span, err)
	}
	return log, nil
}

// FetchMatchDetail returns the table information, which is where per participant
// ratings come from.
func (c *Client) FetchMatchDetail(ctx context.Context, tableID int64) (MatchDetail, error) {
	ctx, span := tracer.Start(ctx, "client:FetchMatchDetail", trace.WithAttributes(
		attribute.Int64("table_id", tableID),
	))
	defer span.End()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	err := c.requireSession()
	if err != nil {
		return MatchDetail{}, fail(span, err)
	}

	var res tableInfosResponse
	err = c.getJSON(ctx, "/table/table/tableinfos.html", url.Values{"id": {itoa(tableID)}}, &res)
	if err != nil {
		c.report(report_client_match_detail, fmt.Errorf("fetch: %w", err), tableID)
		return MatchDetail{}, fail(span, err)
	}
	detail := res.detail()
	if detail.TableID == 0 {
		detail.TableID = tableID
	}
	return detail, nil
}

// SearchPlayer looks players up by (partial) name.
func (c *Client) SearchPlayer(ctx context.Context, query string) ([]PlayerRef, error) {
	ctx, span := tracer.Start(ctx, "client:SearchPlayer", trace.WithAttributes(
		attribute.String("query", query),
	))
	defer span.End()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	err := c.requireSession()
	if err != nil {
		return nil, fail(span, err)
	}

	var res findPlayerResponse
	err = c.getJSON(ctx, "/player/player/findPlayer.html", url.Values{
		"q":     {query},
		"start": {"0"},
		"count": {"Infinity"},
	}, &res)
	if err != nil {
		c.report(report_client_search_player, fmt.Errorf("fetch: %w", err), query)
		return nil, fail(span, err)
	}

	out := make([]PlayerRef, len(res.Players))
	for i, p := range res.Players {
		out[i] = p.ref()
	}
	return out, nil
}

// FetchRanking returns the leaderboard of a game starting at the given offset.
func (c *Client) FetchRanking(ctx context.Context, gameID int64, start int, mode RankingMode) ([]PlayerRef, error) {
	ctx, span := tracer.Start(ctx, "client:FetchRanking", trace.WithAttributes(
		attribute.Int64("game_id", gameID),
		attribute.Int("start", start),
		attribute.String("mode", string(mode)),
	))
	defer span.End()

	if mode == "" {
		mode = RankingElo
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	err := c.requireSession()
	if err != nil {
		return nil, fail(span, err)
	}

	var res rankingResponse
	err = c.getJSON(ctx, "/gamepanel/gamepanel/getRanking.html", url.Values{
		"game":  {itoa(gameID)},
		"start": {strconv.Itoa(start)},
		"mode":  {string(mode)},
	}, &res)
	if err != nil {
		c.report(report_client_fetch_ranking, fmt.Errorf("fetch: %w", err), gameID, start)
		return nil, fail(span, err)
	}

	out := make([]PlayerRef, len(res.Ranks))
	for i, p := range res.Ranks {
		out[i] = p.ref()
	}
	return out, nil
}
