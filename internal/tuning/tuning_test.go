package tuning

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Loads(t *testing.T) {
	tu, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 10.0, tu.Boards.TeamTTL)
	assert.Equal(t, 5.0, tu.Boards.PackTTL)
	assert.Equal(t, 5.0, tu.Boards.TraceWindow)
	assert.Equal(t, 0.5, tu.World.SwitchMargin)
	assert.Equal(t, 1.2, tu.Approach.Stick)
	assert.Equal(t, 7.0, tu.Flee.FearRadius)
	assert.Equal(t, 12.0, tu.Flee.SafeRadius)
	assert.Equal(t, 2, tu.Wander.MaxNudges)

	for _, name := range []string{"hunter", "guard", "wolf", "knight", "archer", "deer"} {
		_, ok := tu.Archetypes[name]
		assert.True(t, ok, "missing archetype %s", name)
	}
	assert.Equal(t, 2, tu.Archetypes["knight"].Length)
	assert.Equal(t, "pack", tu.Archetypes["wolf"].Board)
	require.NotNil(t, tu.Archetypes["hunter"].Loot)
}

func TestParse_OverlaysDefaults(t *testing.T) {
	tu, err := Parse([]byte(`
boards:
  team_ttl: 6
flee:
  fear_radius: 5
`))
	require.NoError(t, err)
	assert.Equal(t, 6.0, tu.Boards.TeamTTL)
	assert.Equal(t, 5.0, tu.Boards.PackTTL, "untouched fields keep defaults")
	assert.Equal(t, 5.0, tu.Flee.FearRadius)
	assert.Equal(t, 12.0, tu.Flee.SafeRadius)
}

func TestParse_ArchetypeReplacedWholesale(t *testing.T) {
	tu, err := Parse([]byte(`
archetypes:
  deer:
    team: fauna
    behavior: flee
    speed: 5
    hp: 3
`))
	require.NoError(t, err)
	deer := tu.Archetypes["deer"]
	assert.Equal(t, 5.0, deer.Speed)
	assert.Empty(t, deer.Threats)
	assert.Contains(t, tu.Archetypes, "wolf")
}

func TestParse_SchemaRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "boards:\n  team_tll: 4\n",
		"bad team":      "archetypes:\n  x:\n    team: pirates\n    behavior: flee\n    speed: 1\n    hp: 1\n",
		"bad hostility": "archetypes:\n  x:\n    team: wild\n    behavior: pursuit\n    speed: 1\n    hp: 1\n    hostility: hungry\n",
		"length three":  "archetypes:\n  x:\n    team: wild\n    behavior: flee\n    speed: 1\n    hp: 1\n    length: 3\n",
		"negative ttl":  "boards:\n  pack_ttl: -1\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}

func TestParse_RangeChecks(t *testing.T) {
	_, err := Parse([]byte("flee:\n  fear_radius: 12\n  safe_radius: 8\n"))
	require.ErrorIs(t, err, ErrInvalid)

	_, err = Parse([]byte("wander:\n  leg_min: 5\n  leg_max: 1\n"))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world:\n  tick_rate_hz: 20\n"), 0o644))

	tu, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, tu.World.TickRateHz)
	assert.InDelta(t, 0.05, tu.TickSeconds(), 1e-12)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	tu, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 30, tu.World.TickRateHz)
}
