// Package scenario loads YAML game scenarios and plays them through the
// adjudicator phase by phase.
package scenario

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/freeeve/dipjudge/pkg/diplomacy"
)

//go:embed scenario.schema.json
var schemaJSON []byte

const schemaURL = "scenario.schema.json"

var schema = func() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		panic("scenario: schema: " + err.Error())
	}
	return c.MustCompile(schemaURL)
}()

// Scenario is a starting position plus the orders for a run of phases.
// Powers are keyed by lower-case name; omitted units or ownership default
// to the 1901 position. Position replaces all of the start fields with a
// position string, which may also start in a retreat phase.
type Scenario struct {
	Name      string              `yaml:"name"`
	Position  string              `yaml:"position"`
	Year      int                 `yaml:"year"`
	Season    string              `yaml:"season"`
	Phase     string              `yaml:"phase"`
	Units     map[string][]string `yaml:"units"`
	Ownership map[string][]string `yaml:"ownership"`
	Phases    []PhaseOrders       `yaml:"phases"`
	Expect    *Expectation        `yaml:"expect"`
}

// PhaseOrders holds one phase's order lines per power.
type PhaseOrders struct {
	Orders map[string][]string `yaml:"orders"`
}

// Expectation describes the board after the last phase. Unset fields are
// not checked.
type Expectation struct {
	Year     int                 `yaml:"year"`
	Position string              `yaml:"position"`
	Season   string              `yaml:"season"`
	Phase    string              `yaml:"phase"`
	Units    map[string][]string `yaml:"units"`
	Centers  map[string]int      `yaml:"centers"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse validates raw YAML against the scenario schema and decodes it.
func Parse(raw []byte) (*Scenario, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("scenario: yaml: %w", err)
	}
	// Round-trip through JSON so the validator sees plain JSON types.
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	var generic any
	if err := json.Unmarshal(js, &generic); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("scenario: invalid: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("scenario: yaml: %w", err)
	}
	return &sc, nil
}

// State builds the starting GameState.
func (sc *Scenario) State() (*diplomacy.GameState, error) {
	if sc.Position != "" {
		if sc.Year != 0 || sc.Season != "" || sc.Phase != "" || sc.Units != nil || sc.Ownership != nil {
			return nil, fmt.Errorf("scenario: position cannot be combined with year, season, phase, units or ownership")
		}
		gs, err := diplomacy.DecodePosition(sc.Position)
		if err != nil {
			return nil, fmt.Errorf("scenario: %w", err)
		}
		return gs, nil
	}

	gs := diplomacy.NewInitialState()
	if sc.Year > 0 {
		gs.Year = sc.Year
	}
	if sc.Season != "" {
		gs.Season = diplomacy.Season(sc.Season)
	}
	if sc.Phase != "" {
		gs.Phase = diplomacy.PhaseType(sc.Phase)
	}

	if sc.Units != nil {
		units, err := parseUnits(gs.Map, sc.Units)
		if err != nil {
			return nil, err
		}
		gs.Units = units
	}

	if sc.Ownership != nil {
		// Powers left out keep whichever home centers nobody else claims.
		owned := diplomacy.VanillaHomeCenters()
		claimed := make(map[string]bool)
		for name, centers := range sc.Ownership {
			set := make(map[string]bool, len(centers))
			for _, c := range centers {
				set[c] = true
				claimed[gs.Map.Canonical(c)] = true
			}
			owned[power(name)] = set
		}
		for p, set := range owned {
			if _, listed := sc.Ownership[string(p)]; listed {
				continue
			}
			for c := range set {
				if claimed[c] {
					delete(set, c)
				}
			}
		}
		own, err := diplomacy.NewOwnershipMap(diplomacy.VanillaSupplyCenters(), owned, diplomacy.VanillaHomeCenters())
		if err != nil {
			return nil, fmt.Errorf("scenario: ownership: %w", err)
		}
		gs.Ownership = own
	}

	if gs.Phase == diplomacy.PhaseAdjustment {
		gs.Ownership, gs.Adjustments = diplomacy.CalculateAdjustments(gs.Ownership, gs.Units)
	}
	return gs, nil
}

func parseUnits(m *diplomacy.Map, byPower map[string][]string) (diplomacy.PlayerUnits, error) {
	units := make(diplomacy.PlayerUnits, len(byPower))
	occupied := make(map[string]diplomacy.Power)
	for name, lines := range byPower {
		p := power(name)
		list := make([]diplomacy.Unit, 0, len(lines))
		for _, line := range lines {
			u, err := diplomacy.ParseUnit(line)
			if err != nil {
				return nil, fmt.Errorf("scenario: %s unit %q: %w", p, line, err)
			}
			land := m.Canonical(u.Position)
			if other, taken := occupied[land]; taken && other != p {
				return nil, fmt.Errorf("scenario: %s and %s both have a unit in %s", other, p, land)
			}
			occupied[land] = p
			list = append(list, u)
		}
		player, err := diplomacy.NewPlayer(m, p, list...)
		if err != nil {
			return nil, fmt.Errorf("scenario: %s units: %w", p, err)
		}
		units[p] = player.Units
	}
	return units, nil
}

func power(name string) diplomacy.Power {
	return diplomacy.Power(strings.ToLower(name))
}
