package vocab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRaceNames(t *testing.T) {
	require.Equal(t, "Terrans", RaceName(Terrans))
	require.Equal(t, "Bal T'aks", RaceName(BalTaks))
	require.Equal(t, "Unknown Race (99)", RaceName(99))

	require.Len(t, Races(), 14)
	for _, id := range Races() {
		back, ok := RaceByName(RaceName(id))
		require.True(t, ok)
		require.Equal(t, id, back)
	}

	_, ok := RaceByName("Unknown Race (99)")
	require.False(t, ok)

	require.True(t, Itars.Known())
	require.False(t, RaceID(0).Known())
	require.False(t, RaceID(15).Known())
}

func TestBuildings(t *testing.T) {
	require.Equal(t, "Mine", BuildingName(Mine))
	require.Equal(t, "Unknown Building (2)", BuildingName(2))

	id, ok := BuildingBySlug("planetary-institute")
	require.True(t, ok)
	require.Equal(t, PlanetaryInstitute, id)

	_, ok = BuildingBySlug("space-station")
	require.False(t, ok)
}

func TestResearchTrackName(t *testing.T) {
	require.Equal(t, "Gaia Forming", ResearchTrackName(Gaiaforming))
	require.Equal(t, "Unknown Track (0)", ResearchTrackName(0))
}
