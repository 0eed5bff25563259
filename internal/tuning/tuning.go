// Package tuning loads the simulation's YAML tuning file. An embedded default
// document is always applied first; a user file overlays it. Both are checked
// against an embedded JSON schema before decoding.
package tuning

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

//go:embed tuning.schema.json
var schemaJSON []byte

const schemaURL = "tuning.schema.json"

// ErrInvalid marks tuning documents that fail schema or range checks.
var ErrInvalid = errors.New("invalid tuning")

type Tuning struct {
	World      World                `yaml:"world"`
	Boards     Boards               `yaml:"boards"`
	Pathfinder Pathfinder           `yaml:"pathfinder"`
	Approach   Approach             `yaml:"approach"`
	Wander     Wander               `yaml:"wander"`
	Flee       Flee                 `yaml:"flee"`
	Archetypes map[string]Archetype `yaml:"archetypes"`
}

type World struct {
	TickRateHz   int     `yaml:"tick_rate_hz"`
	SwitchMargin float64 `yaml:"switch_margin"`
}

type Boards struct {
	TeamTTL     float64 `yaml:"team_ttl"`
	PackTTL     float64 `yaml:"pack_ttl"`
	TraceWindow float64 `yaml:"trace_window"`
}

type Pathfinder struct {
	MaxExpansions int `yaml:"max_expansions"`
}

type Approach struct {
	Stick           float64 `yaml:"stick"`
	Jitter          float64 `yaml:"jitter"`
	MaxSamples      int     `yaml:"max_samples"`
	MaxSnapRadius   int     `yaml:"max_snap_radius"`
	HoldInterval    float64 `yaml:"hold_interval"`
	RepathCooldown  float64 `yaml:"repath_cooldown"`
	WatchdogWindow  float64 `yaml:"watchdog_window"`
	ProgressEpsilon float64 `yaml:"progress_epsilon"`
	SelectInterval  float64 `yaml:"select_interval"`
	AimDot          float64 `yaml:"aim_dot"`
	DisengageFactor float64 `yaml:"disengage_factor"`
}

type Wander struct {
	LegMin          float64 `yaml:"leg_min"`
	LegMax          float64 `yaml:"leg_max"`
	RadiusMin       float64 `yaml:"radius_min"`
	RadiusMax       float64 `yaml:"radius_max"`
	MaxNudges       int     `yaml:"max_nudges"`
	NudgeMinTravel  float64 `yaml:"nudge_min_travel"`
	NudgeMinTurnDeg float64 `yaml:"nudge_min_turn_deg"`
	ArriveDist      float64 `yaml:"arrive_dist"`
	PauseMin        float64 `yaml:"pause_min"`
	PauseMax        float64 `yaml:"pause_max"`
	NudgeInterval   float64 `yaml:"nudge_interval"`
	NudgeChance     float64 `yaml:"nudge_chance"`
}

type Flee struct {
	FearRadius     float64 `yaml:"fear_radius"`
	SafeRadius     float64 `yaml:"safe_radius"`
	ReplanInterval float64 `yaml:"replan_interval"`
}

// Archetype is one role's stat block and behaviour wiring.
type Archetype struct {
	Team        string  `yaml:"team"`
	Behavior    string  `yaml:"behavior"` // "pursuit" or "flee"
	Speed       float64 `yaml:"speed"`
	TurnRateDeg float64 `yaml:"turn_rate_deg"`
	Length      int     `yaml:"length"`
	SightRadius float64 `yaml:"sight_radius"`
	HP          float64 `yaml:"hp"`

	Damage         float64  `yaml:"damage"`
	HitChance      float64  `yaml:"hit_chance"`
	Ranged         bool     `yaml:"ranged"`
	EngageRange    float64  `yaml:"engage_range"`
	StandoffRadius float64  `yaml:"standoff_radius"`
	Cooldown       float64  `yaml:"cooldown"`
	Targets        []string `yaml:"targets"`
	Hostility      string   `yaml:"hostility"`
	Board          string   `yaml:"board"` // "team" or "pack"
	Loot           *Loot    `yaml:"loot"`

	Threats []string `yaml:"threats"`
}

type Loot struct {
	Targets       []string `yaml:"targets"`
	PickupRange   float64  `yaml:"pickup_range"`
	UnloadSeconds float64  `yaml:"unload_seconds"`
}

// Default returns the embedded tuning.
func Default() (*Tuning, error) {
	var t Tuning
	if err := decode(defaultsYAML, &t, "defaults.yaml"); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load returns the defaults overlaid with the file at path. An empty path
// returns the defaults. Archetype entries in the file replace the default entry
// of the same name as a whole.
func Load(path string) (*Tuning, error) {
	t, err := Default()
	if err != nil || path == "" {
		return t, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tuning: %w", err)
	}
	if err := decode(raw, t, path); err != nil {
		return nil, err
	}
	return t, nil
}

// Parse overlays an in-memory YAML document on the defaults.
func Parse(raw []byte) (*Tuning, error) {
	t, err := Default()
	if err != nil {
		return nil, err
	}
	if err := decode(raw, t, "inline"); err != nil {
		return nil, err
	}
	return t, nil
}

func decode(raw []byte, t *Tuning, name string) error {
	if err := validateSchema(raw); err != nil {
		return fmt.Errorf("%s: %w: %v", name, ErrInvalid, err)
	}
	if err := yaml.Unmarshal(raw, t); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

var compiled *jsonschema.Schema

func schema() (*jsonschema.Schema, error) {
	if compiled != nil {
		return compiled, nil
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, err
	}
	compiled = s
	return s, nil
}

// validateSchema checks a YAML document against the embedded schema. The
// document goes through JSON so the validator sees plain JSON values.
func validateSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	s, err := schema()
	if err != nil {
		return err
	}
	return s.Validate(v)
}

// Validate checks cross-field ranges the schema cannot express.
func (t *Tuning) Validate() error {
	if t.Flee.SafeRadius <= t.Flee.FearRadius {
		return fmt.Errorf("%w: flee.safe_radius %.2f must exceed fear_radius %.2f", ErrInvalid, t.Flee.SafeRadius, t.Flee.FearRadius)
	}
	if t.Wander.LegMax < t.Wander.LegMin {
		return fmt.Errorf("%w: wander.leg_max below leg_min", ErrInvalid)
	}
	if t.Wander.RadiusMax < t.Wander.RadiusMin {
		return fmt.Errorf("%w: wander.radius_max below radius_min", ErrInvalid)
	}
	if t.Wander.PauseMax < t.Wander.PauseMin {
		return fmt.Errorf("%w: wander.pause_max below pause_min", ErrInvalid)
	}
	for name, a := range t.Archetypes {
		if a.Behavior == "pursuit" && a.EngageRange <= 0 {
			return fmt.Errorf("%w: archetype %s: pursuit needs engage_range", ErrInvalid, name)
		}
		if a.Behavior == "pursuit" && a.StandoffRadius > a.EngageRange {
			return fmt.Errorf("%w: archetype %s: standoff_radius beyond engage_range", ErrInvalid, name)
		}
	}
	return nil
}

// TickSeconds returns the fixed simulation step.
func (t *Tuning) TickSeconds() float64 {
	if t.World.TickRateHz <= 0 {
		return 1.0 / 60
	}
	return 1.0 / float64(t.World.TickRateHz)
}
