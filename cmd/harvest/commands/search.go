package commands

import (
	"fmt"
	"strconv"
	"strings"

	"gaiaharvest/internal/store"
	"gaiaharvest/internal/vocab"
	"gaiaharvest/pkg/serviceutil"
	"gaiaharvest/pkg/textutil"

	"github.com/spf13/cobra"
)

var (
	searchWinnerRace *string
	searchWinner     *string
	searchMinElo     *float64
	searchPlayers    *[]string
	searchCounts     *[]int
	searchStructures *[]string
	searchLimit      *int
)

func init() {
	flags := searchCmd.Flags()
	searchWinnerRace = flags.String("winner-race", "", "Race of the winner (ex. 'Hadsch Hallas').")
	searchWinner = flags.String("winner", "", "Part of the winner's name.")
	searchMinElo = flags.Float64("min-elo", 0, "Lowest rating every rated player must have.")
	searchPlayers = flags.StringSlice("player", nil, "Part of the name of a player that took part, any of them matches.")
	searchCounts = flags.IntSlice("players", nil, "Allowed player counts.")
	searchStructures = flags.StringArray("structure", nil, "A structure condition '<race>:<structure>[:<max round>]', race may be empty.")
	searchLimit = flags.Int("limit", store.DefaultSearchLimit, "How many matches to print at most.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [flags]",
	Short: "Searches the stored matches.",
	Run: func(cmd *cobra.Command, args []string) {
		req := store.SearchRequest{
			WinnerName:   *searchWinner,
			MinPlayerElo: *searchMinElo,
			PlayerNames:  *searchPlayers,
			PlayerCounts: *searchCounts,
			Limit:        *searchLimit,
		}
		if *searchWinnerRace != "" {
			race, err := parseRace(*searchWinnerRace)
			if err != nil {
				serviceutil.Fatal("invalid --winner-race", err)
			}
			req.WinnerRace = race
		}
		for _, s := range *searchStructures {
			cond, err := parseStructureCondition(s)
			if err != nil {
				serviceutil.Fatal("invalid --structure", err)
			}
			req.StructureConditions = append(req.StructureConditions, cond)
		}

		a, err := openApp(cmd.Context(), false)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.Close()

		matches, err := a.store.Search(cmd.Context(), req)
		if err != nil {
			serviceutil.Fatal("failed to search", err)
		}
		renderMatches(matches)
	},
}

// parseRace accepts race names in any case and with or without spaces.
func parseRace(name string) (vocab.RaceID, error) {
	target := textutil.NormalizeName(name)
	for _, race := range vocab.Races() {
		if textutil.NormalizeName(vocab.RaceName(race)) == target {
			return race, nil
		}
	}
	return 0, fmt.Errorf("unknown race '%s'", name)
}

func parseStructureCondition(s string) (store.StructureCondition, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return store.StructureCondition{}, fmt.Errorf("'%s' has too many parts", s)
	}

	var cond store.StructureCondition
	if strings.TrimSpace(parts[0]) != "" {
		race, err := parseRace(parts[0])
		if err != nil {
			return store.StructureCondition{}, err
		}
		cond.Race = race
	}
	if len(parts) >= 2 && strings.TrimSpace(parts[1]) != "" {
		building, ok := vocab.BuildingBySlug(strings.ToLower(strings.TrimSpace(parts[1])))
		if !ok {
			return store.StructureCondition{}, fmt.Errorf("unknown structure '%s'", parts[1])
		}
		cond.Structure = building
	}
	if len(parts) == 3 {
		maxRound, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || maxRound <= 0 {
			return store.StructureCondition{}, fmt.Errorf("invalid max round '%s'", parts[2])
		}
		cond.MaxRound = maxRound
	}
	if cond.Race == 0 && cond.Structure == 0 {
		return store.StructureCondition{}, fmt.Errorf("'%s' has neither a race nor a structure", s)
	}
	return cond, nil
}
