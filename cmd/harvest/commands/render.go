package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gaiaharvest/internal/collector"
	"gaiaharvest/internal/match"
	"gaiaharvest/internal/vocab"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func formatRating(rating *float64) string {
	if rating == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f", *rating)
}

func renderOutcomes(outcomes []collector.Outcome) {
	t := newTable()
	t.AppendHeader(table.Row{"Player", "Result", "Total", "New", "Skipped", "Failed", "Duration"})
	for _, o := range outcomes {
		s := o.Stats
		player := collector.PlayerTarget{ID: s.PlayerID, Name: s.PlayerName}
		result := o.Reason.String()
		if s.PageCapReached {
			result += " (page cap)"
		}
		t.AppendRow(table.Row{
			player.String(),
			result,
			s.TotalGames,
			s.NewGames,
			s.SkippedGames,
			s.FailedGames,
			s.FinishedAt.Sub(s.StartedAt).Round(time.Second),
		})
	}
	t.Render()

	for _, o := range outcomes {
		if len(o.Stats.Errors) == 0 {
			continue
		}
		errs := newTable()
		errs.SetTitle(fmt.Sprintf("errors of %s (run %s)", o.Stats.PlayerName, o.Stats.RunID))
		errs.AppendHeader(table.Row{"Table", "Page", "Error"})
		for _, e := range o.Stats.Errors {
			errs.AppendRow(table.Row{e.TableID, e.Page, e.Err.Error()})
		}
		errs.Render()
	}
}

func renderMatches(matches []match.ParsedMatch) {
	t := newTable()
	t.AppendHeader(table.Row{"Table", "Players", "Winner", "Min ELO", "Races"})
	for _, m := range matches {
		races := make([]string, len(m.Players))
		for i, p := range m.Players {
			races[i] = fmt.Sprintf("%s (%s, %d)", p.PlayerName, p.RaceName, p.FinalScore)
		}
		t.AppendRow(table.Row{
			m.TableID,
			m.PlayerCount,
			m.WinnerName,
			formatRating(m.MinPlayerElo),
			strings.Join(races, "\n"),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(matches)})
	t.Render()
}

func formatRound(buildings []vocab.BuildingID) string {
	if len(buildings) == 0 {
		return "-"
	}
	names := make([]string, len(buildings))
	for i, b := range buildings {
		names[i] = vocab.BuildingName(b)
	}
	return strings.Join(names, ", ")
}

func renderMatch(m match.ParsedMatch) {
	t := newTable()
	t.SetTitle(fmt.Sprintf("table %d (%s), won by %s", m.TableID, m.GameName, m.WinnerName))
	t.AppendHeader(table.Row{"Player", "Race", "Score", "ELO", "Buildings", "Winner"})
	for _, p := range m.Players {
		winner := ""
		if m.IsWinner(p) {
			winner = "yes"
		}
		t.AppendRow(table.Row{p.PlayerName, p.RaceName, p.FinalScore, formatRating(p.Rating), p.BuildingCount(), winner})
	}
	t.Render()

	rounds := newTable()
	rounds.SetTitle("buildings by round")
	header := table.Row{"Round"}
	maxRounds := 0
	for _, p := range m.Players {
		header = append(header, p.PlayerName)
		maxRounds = max(maxRounds, len(p.BuildingsByRound))
	}
	rounds.AppendHeader(header)
	for round := 0; round < maxRounds; round++ {
		row := table.Row{round + 1}
		for _, p := range m.Players {
			if round < len(p.BuildingsByRound) {
				row = append(row, formatRound(p.BuildingsByRound[round]))
			} else {
				row = append(row, "-")
			}
		}
		rounds.AppendRow(row)
	}
	rounds.Render()
}
