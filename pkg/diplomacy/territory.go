package diplomacy

// TerritoryKind classifies a territory as land, sea, or a coast of a land.
type TerritoryKind int

const (
	LandTerritory  TerritoryKind = iota // Troops only; may own coasts
	SeaTerritory                        // Fleets only
	CoastTerritory                      // Fleets only; belongs to a land
)

func (k TerritoryKind) String() string {
	switch k {
	case LandTerritory:
		return "land"
	case SeaTerritory:
		return "sea"
	case CoastTerritory:
		return "coast"
	default:
		return "unknown"
	}
}

// Territory is a node of the board graph. A land owns its coasts and each
// coast points back at its land.
type Territory struct {
	Name   string
	Kind   TerritoryKind
	Parent *Territory   // set only for coasts
	Coasts []*Territory // set only for lands
}

// Land returns the land a coast belongs to, or the territory itself.
func (t *Territory) Land() *Territory {
	if t.Kind == CoastTerritory {
		return t.Parent
	}
	return t
}

// ConvoyCompatible reports whether a troop can be convoyed from or to t:
// it must be a land with at least one coast.
func (t *Territory) ConvoyCompatible() bool {
	return t.Kind == LandTerritory && len(t.Coasts) > 0
}

// Accepts reports whether a unit of the given type may occupy t.
func (t *Territory) Accepts(ut UnitType) bool {
	if ut == Troop {
		return t.Kind == LandTerritory
	}
	return t.Kind == SeaTerritory || t.Kind == CoastTerritory
}

// TerritoryDescriptor defines a territory for NewMap. A descriptor with Sea
// set describes a sea; otherwise it describes a land and Coasts names its
// coast children (possibly none, for an inland territory).
type TerritoryDescriptor struct {
	Name   string
	Sea    bool
	Coasts []string
}
