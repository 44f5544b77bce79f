package diplomacy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Position notation is a one-line snapshot of a vanilla GameState:
//
//	1901sm/Aabud,Aftri,Aavie,.../Abud,Atri,...,Nbel,.../Iaven>apu|pie|rom
//
// Sections are phase info, units, supply center owners (N for neutral) and
// dislodged units with their retreat options. Single-coast fleets drop the
// coast; split coasts are written stp.sc.

var powerToChar = map[Power]byte{
	Austria: 'A',
	England: 'E',
	France:  'F',
	Germany: 'G',
	Italy:   'I',
	Russia:  'R',
	Turkey:  'T',
}

var charToPower = map[byte]Power{
	'A': Austria,
	'E': England,
	'F': France,
	'G': Germany,
	'I': Italy,
	'R': Russia,
	'T': Turkey,
}

const neutralChar = 'N'

var seasonToChar = map[Season]byte{
	Spring: 's',
	Fall:   'f',
}

var charToSeason = map[byte]Season{
	's': Spring,
	'f': Fall,
}

var phaseToChar = map[PhaseType]byte{
	PhaseMovement:   'm',
	PhaseRetreat:    'r',
	PhaseAdjustment: 'a',
}

var charToPhase = map[byte]PhaseType{
	'm': PhaseMovement,
	'r': PhaseRetreat,
	'a': PhaseAdjustment,
}

// EncodePosition serializes gs. The output is deterministic: entries are
// grouped in power order (A,E,F,G,I,R,T) and sorted by territory within
// each power. Only the seven great powers can be encoded.
func EncodePosition(gs *GameState) (string, error) {
	for p := range gs.Units {
		if _, ok := powerToChar[p]; !ok && len(gs.Units[p]) > 0 {
			return "", fmt.Errorf("position: power %q has no notation letter", p)
		}
	}

	var b strings.Builder
	b.Grow(512)

	b.WriteString(strconv.Itoa(gs.Year))
	b.WriteByte(seasonToChar[gs.Season])
	b.WriteByte(phaseToChar[gs.Phase])
	b.WriteByte('/')
	encodeUnitSection(&b, gs.Units)
	b.WriteByte('/')
	encodeCenters(&b, gs.Ownership)
	b.WriteByte('/')
	encodeDislodged(&b, gs.Retreats)
	return b.String(), nil
}

func encodeUnitSection(b *strings.Builder, units PlayerUnits) {
	first := true
	for _, p := range AllPowers() {
		for _, u := range units.Sorted(p) {
			if !first {
				b.WriteByte(',')
			}
			first = false
			encodeUnit(b, p, u)
		}
	}
	if first {
		b.WriteByte('-')
	}
}

func encodeUnit(b *strings.Builder, p Power, u Unit) {
	b.WriteByte(powerToChar[p])
	if u.Type == Troop {
		b.WriteByte('a')
	} else {
		b.WriteByte('f')
	}
	b.WriteString(encodeLocation(u.Position))
}

func encodeLocation(pos string) string {
	if land, ok := strings.CutSuffix(pos, "/c"); ok {
		return land
	}
	return strings.ReplaceAll(pos, "/", ".")
}

func encodeCenters(b *strings.Builder, own *OwnershipMap) {
	if own == nil {
		b.WriteByte('-')
		return
	}
	owned := make(map[string]bool)
	first := true
	write := func(c byte, center string) {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteByte(c)
		b.WriteString(center)
	}
	for _, p := range AllPowers() {
		for _, center := range sortedKeys(own.Owned[p]) {
			owned[center] = true
			write(powerToChar[p], center)
		}
	}
	for _, center := range own.Supply.Sorted() {
		if !owned[center] {
			write(neutralChar, center)
		}
	}
	if first {
		b.WriteByte('-')
	}
}

func encodeDislodged(b *strings.Builder, rm RetreatMap) {
	dislodged := rm.Dislodged()
	first := true
	for _, p := range AllPowers() {
		for _, u := range dislodged[p] {
			if !first {
				b.WriteByte(',')
			}
			first = false
			encodeUnit(b, p, u)
			b.WriteByte('>')
			dests := append([]string(nil), rm[p][u].Destinations...)
			sort.Strings(dests)
			for i, d := range dests {
				if i > 0 {
					b.WriteByte('|')
				}
				b.WriteString(encodeLocation(d))
			}
		}
	}
	if first {
		b.WriteByte('-')
	}
}

// DecodePosition parses a position on the vanilla board. Home centers are
// the standard ones; an adjustment phase recomputes each power's build or
// disband count from centers and units.
func DecodePosition(s string) (*GameState, error) {
	parts := strings.SplitN(s, "/", 4)
	if len(parts) != 4 {
		return nil, fmt.Errorf("position: expected 4 sections separated by '/', got %d", len(parts))
	}

	gs := &GameState{Map: VanillaMap()}
	if err := decodePhaseInfo(parts[0], gs); err != nil {
		return nil, err
	}

	units, err := decodeUnitSection(gs.Map, parts[1])
	if err != nil {
		return nil, err
	}
	gs.Units = units

	if gs.Ownership, err = decodeCenters(parts[2]); err != nil {
		return nil, err
	}

	if err := decodeDislodged(gs, parts[3]); err != nil {
		return nil, err
	}

	if gs.Phase == PhaseAdjustment {
		gs.Adjustments = make(map[Power]int)
		for _, p := range AllPowers() {
			if d := gs.Ownership.CenterCount(p) - gs.Units.Count(p); d != 0 {
				gs.Adjustments[p] = d
			}
		}
	}
	return gs, nil
}

// decodePhaseInfo parses "1901sm" into year, season, phase.
func decodePhaseInfo(s string, gs *GameState) error {
	if len(s) < 3 {
		return fmt.Errorf("position: phase info too short: %q", s)
	}
	year, err := strconv.Atoi(s[:len(s)-2])
	if err != nil {
		return fmt.Errorf("position: invalid year %q: %w", s[:len(s)-2], err)
	}
	season, ok := charToSeason[s[len(s)-2]]
	if !ok {
		return fmt.Errorf("position: invalid season %q", s[len(s)-2:len(s)-1])
	}
	phase, ok := charToPhase[s[len(s)-1]]
	if !ok {
		return fmt.Errorf("position: invalid phase %q", s[len(s)-1:])
	}
	gs.Year, gs.Season, gs.Phase = year, season, phase
	return nil
}

func decodeUnitSection(m *Map, s string) (PlayerUnits, error) {
	units := make(PlayerUnits)
	if s == "-" {
		return units, nil
	}
	byPower := make(map[Power][]Unit)
	occupied := make(map[string]bool)
	for _, entry := range strings.Split(s, ",") {
		p, u, err := parseUnitEntry(m, entry)
		if err != nil {
			return nil, fmt.Errorf("position: unit %q: %w", entry, err)
		}
		land := m.Canonical(u.Position)
		if occupied[land] {
			return nil, fmt.Errorf("position: unit %q: %s already occupied", entry, land)
		}
		occupied[land] = true
		byPower[p] = append(byPower[p], u)
	}
	for p, list := range byPower {
		player, err := NewPlayer(m, p, list...)
		if err != nil {
			return nil, fmt.Errorf("position: %s: %w", p, err)
		}
		units[p] = player.Units
	}
	return units, nil
}

// parseUnitEntry parses "Aavie" or "Rfstp.sc".
func parseUnitEntry(m *Map, s string) (Power, Unit, error) {
	if len(s) < 3 {
		return "", Unit{}, fmt.Errorf("too short")
	}
	p, ok := charToPower[s[0]]
	if !ok {
		return "", Unit{}, fmt.Errorf("invalid power char %q", s[:1])
	}
	var ut UnitType
	switch s[1] {
	case 'a':
		ut = Troop
	case 'f':
		ut = Fleet
	default:
		return "", Unit{}, fmt.Errorf("invalid unit type %q", s[1:2])
	}
	pos, err := decodeLocation(m, ut, s[2:])
	if err != nil {
		return "", Unit{}, err
	}
	return p, Unit{Type: ut, Position: pos}, nil
}

// decodeLocation restores the territory name. A fleet written on a land
// stands on its only coast.
func decodeLocation(m *Map, ut UnitType, s string) (string, error) {
	name := strings.ReplaceAll(s, ".", "/")
	t, ok := m.Territory(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTerritory, s)
	}
	if ut == Fleet && t.Kind == LandTerritory && len(t.Coasts) == 1 {
		return t.Coasts[0].Name, nil
	}
	return name, nil
}

func decodeCenters(s string) (*OwnershipMap, error) {
	owned := make(map[Power]map[string]bool)
	if s != "-" {
		for _, entry := range strings.Split(s, ",") {
			if len(entry) < 2 {
				return nil, fmt.Errorf("position: center entry too short: %q", entry)
			}
			if entry[0] == neutralChar {
				continue
			}
			p, ok := charToPower[entry[0]]
			if !ok {
				return nil, fmt.Errorf("position: invalid power in center %q", entry)
			}
			if owned[p] == nil {
				owned[p] = make(map[string]bool)
			}
			owned[p][entry[1:]] = true
		}
	}
	own, err := NewOwnershipMap(VanillaSupplyCenters(), owned, VanillaHomeCenters())
	if err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}
	return own, nil
}

// decodeDislodged parses "Iaven>apu|pie|rom,Afbla>" or "-" into a retreat
// map covering every unit.
func decodeDislodged(gs *GameState, s string) error {
	if s == "-" {
		return nil
	}
	rm := make(RetreatMap)
	for p, set := range gs.Units {
		rm[p] = make(map[Unit]*Retreat, len(set))
		for u := range set {
			rm[p][u] = nil
		}
	}
	for _, entry := range strings.Split(s, ",") {
		unitPart, destPart, ok := strings.Cut(entry, ">")
		if !ok {
			return fmt.Errorf("position: dislodged %q: missing '>' separator", entry)
		}
		p, u, err := parseUnitEntry(gs.Map, unitPart)
		if err != nil {
			return fmt.Errorf("position: dislodged %q: %w", entry, err)
		}
		r := &Retreat{Destinations: []string{}}
		if destPart != "" {
			for _, d := range strings.Split(destPart, "|") {
				name, err := decodeLocation(gs.Map, u.Type, d)
				if err != nil {
					return fmt.Errorf("position: dislodged %q: %w", entry, err)
				}
				r.Destinations = append(r.Destinations, name)
			}
		}
		if rm[p] == nil {
			rm[p] = make(map[Unit]*Retreat)
		}
		rm[p][u] = r
	}
	gs.Retreats = rm
	return nil
}
