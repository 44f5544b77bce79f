package diplomacy

// Season represents a game season.
type Season string

const (
	Spring Season = "spring"
	Fall   Season = "fall"
)

// PhaseType represents the type of game phase.
type PhaseType string

const (
	PhaseMovement   PhaseType = "movement"
	PhaseRetreat    PhaseType = "retreat"
	PhaseAdjustment PhaseType = "adjustment"
)

// GameState is a snapshot of the board between phases. Retreats is set only
// during a retreat phase and Adjustments only during an adjustment phase.
type GameState struct {
	Year        int
	Season      Season
	Phase       PhaseType
	Map         *Map
	Units       PlayerUnits
	Ownership   *OwnershipMap
	Retreats    RetreatMap
	Adjustments map[Power]int
}

// NewInitialState returns the standard starting position (Spring 1901 Movement).
func NewInitialState() *GameState {
	return &GameState{
		Year:      1901,
		Season:    Spring,
		Phase:     PhaseMovement,
		Map:       VanillaMap(),
		Units:     VanillaStartingUnits(),
		Ownership: VanillaOwnership(),
	}
}

// UnitAt returns the unit standing on territory (any coast of it counts).
func (gs *GameState) UnitAt(territory string) (Power, Unit, bool) {
	for _, p := range gs.Units.Players() {
		for u := range gs.Units[p] {
			if gs.Map.SameTerritory(u.Position, territory) {
				return p, u, true
			}
		}
	}
	return "", Unit{}, false
}

// SupplyCenterCount returns the number of supply centers owned by the given power.
func (gs *GameState) SupplyCenterCount(power Power) int {
	return gs.Ownership.CenterCount(power)
}

// UnitCount returns the number of units belonging to the given power.
func (gs *GameState) UnitCount(power Power) int {
	return gs.Units.Count(power)
}

// Player returns an order-issuing handle for power's current units.
func (gs *GameState) Player(power Power) *Player {
	units := make(map[Unit]bool, len(gs.Units[power]))
	for u := range gs.Units[power] {
		units[u] = true
	}
	return &Player{Name: power, Map: gs.Map, Units: units}
}

// Players returns a handle for every power with units or centers.
func (gs *GameState) Players() map[Power]*Player {
	out := make(map[Power]*Player)
	for p := range gs.Units {
		out[p] = gs.Player(p)
	}
	for p := range gs.Ownership.Owned {
		if out[p] == nil {
			out[p] = gs.Player(p)
		}
	}
	return out
}

// Clone returns a deep copy of the GameState. The board and supply map are
// immutable and shared.
func (gs *GameState) Clone() *GameState {
	c := &GameState{
		Year:   gs.Year,
		Season: gs.Season,
		Phase:  gs.Phase,
		Map:    gs.Map,
		Units:  gs.Units.Clone(),
	}
	if gs.Ownership != nil {
		c.Ownership = gs.Ownership.Clone()
	}
	if gs.Retreats != nil {
		c.Retreats = make(RetreatMap, len(gs.Retreats))
		for p, units := range gs.Retreats {
			set := make(map[Unit]*Retreat, len(units))
			for u, r := range units {
				if r != nil {
					r = &Retreat{Destinations: append([]string{}, r.Destinations...)}
				}
				set[u] = r
			}
			c.Retreats[p] = set
		}
	}
	if gs.Adjustments != nil {
		c.Adjustments = make(map[Power]int, len(gs.Adjustments))
		for p, n := range gs.Adjustments {
			c.Adjustments[p] = n
		}
	}
	return c
}
