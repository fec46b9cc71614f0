// Package vocab holds the Gaia Project vocabulary as it appears in Board Game
// Arena logs: race ids, building ids, research tracks and event type tags.
package vocab

import "fmt"

// GaiaProjectGameID is BGA's game id for Gaia Project.
const GaiaProjectGameID = 1495

type RaceID int

const (
	Terrans      RaceID = 1
	Lantids      RaceID = 2
	Xenos        RaceID = 3
	Gleens       RaceID = 4
	Taklons      RaceID = 5
	Ambas        RaceID = 6
	HadschHallas RaceID = 7
	Ivits        RaceID = 8
	Geodens      RaceID = 9
	BalTaks      RaceID = 10
	Firacs       RaceID = 11
	Bescods      RaceID = 12
	Nevlas       RaceID = 13
	Itars        RaceID = 14
)

var raceNames = map[RaceID]string{
	Terrans:      "Terrans",
	Lantids:      "Lantids",
	Xenos:        "Xenos",
	Gleens:       "Gleens",
	Taklons:      "Taklons",
	Ambas:        "Ambas",
	HadschHallas: "Hadsch Hallas",
	Ivits:        "Ivits",
	Geodens:      "Geodens",
	BalTaks:      "Bal T'aks",
	Firacs:       "Firacs",
	Bescods:      "Bescods",
	Nevlas:       "Nevlas",
	Itars:        "Itars",
}

// RaceName never fails, unknown ids get a placeholder name.
func RaceName(id RaceID) string {
	name, ok := raceNames[id]
	if !ok {
		return fmt.Sprintf("Unknown Race (%d)", id)
	}
	return name
}

func (id RaceID) Known() bool {
	_, ok := raceNames[id]
	return ok
}

// RaceByName is the inverse of RaceName for known races.
func RaceByName(name string) (RaceID, bool) {
	for id, n := range raceNames {
		if n == name {
			return id, true
		}
	}
	return 0, false
}

// Races returns every known race ordered by id.
func Races() []RaceID {
	out := make([]RaceID, 0, len(raceNames))
	for id := Terrans; id <= Itars; id++ {
		out = append(out, id)
	}
	return out
}

type BuildingID int

const (
	Mine               BuildingID = 4
	TradingStation     BuildingID = 5
	ResearchLab        BuildingID = 6
	AcademyKnowledge   BuildingID = 7
	AcademyQIC         BuildingID = 8
	PlanetaryInstitute BuildingID = 9
)

var buildingNames = map[BuildingID]string{
	Mine:               "Mine",
	TradingStation:     "Trading Station",
	ResearchLab:        "Research Lab",
	AcademyKnowledge:   "Academy (Knowledge)",
	AcademyQIC:         "Academy (QIC)",
	PlanetaryInstitute: "Planetary Institute",
}

func BuildingName(id BuildingID) string {
	name, ok := buildingNames[id]
	if !ok {
		return fmt.Sprintf("Unknown Building (%d)", id)
	}
	return name
}

// structureSlugs are the identifiers used by search filters.
var structureSlugs = map[string]BuildingID{
	"mine":                Mine,
	"trading-station":     TradingStation,
	"research-lab":        ResearchLab,
	"knowledge-academy":   AcademyKnowledge,
	"qic-academy":         AcademyQIC,
	"planetary-institute": PlanetaryInstitute,
}

func BuildingBySlug(slug string) (BuildingID, bool) {
	id, ok := structureSlugs[slug]
	return id, ok
}

type ResearchTrack int

const (
	Terraforming           ResearchTrack = 1
	Navigation             ResearchTrack = 2
	ArtificialIntelligence ResearchTrack = 3
	Gaiaforming            ResearchTrack = 4
	Economy                ResearchTrack = 5
	Science                ResearchTrack = 6
)

var researchTrackNames = map[ResearchTrack]string{
	Terraforming:           "Terraforming",
	Navigation:             "Navigation",
	ArtificialIntelligence: "Artificial Intelligence",
	Gaiaforming:            "Gaia Forming",
	Economy:                "Economy",
	Science:                "Science",
}

func ResearchTrackName(track ResearchTrack) string {
	name, ok := researchTrackNames[track]
	if !ok {
		return fmt.Sprintf("Unknown Track (%d)", track)
	}
	return name
}

// EventType is the string tag BGA puts on every log event.
type EventType string

const (
	EventChooseRace      EventType = "notifyChooseRace"
	EventGameStateChange EventType = "gameStateChange"
	EventRoundEnd        EventType = "notifyRoundEnd"
	// notifyBuild only ever places a mine
	EventBuild   EventType = "notifyBuild"
	EventUpgrade EventType = "notifyUpgrade"
)
