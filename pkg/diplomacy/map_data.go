package diplomacy

import (
	"strings"
	"sync"
)

var (
	vanillaOnce sync.Once
	vanillaMap  *Map
	vanillaErr  error
)

// VanillaMap returns the standard 75-province board. Single-coast lands
// carry one coast named "<land>/c"; Spain, St. Petersburg and Bulgaria carry
// two named coasts each. The map is built once and cached; callers must not
// mutate it.
func VanillaMap() *Map {
	vanillaOnce.Do(func() {
		vanillaMap, vanillaErr = NewMap(vanillaDescriptors(), vanillaAdjacencies())
	})
	if vanillaErr != nil {
		panic("diplomacy: vanilla map: " + vanillaErr.Error())
	}
	return vanillaMap
}

// Inland provinces (troops only).
var vanillaInland = []string{
	"boh", "bud", "bur", "gal", "mos", "mun", "par", "ruh", "ser", "sil",
	"tyr", "ukr", "vie", "war",
}

// Coastal provinces with a single coast.
var vanillaCoastal = []string{
	"alb", "ank", "apu", "arm", "bel", "ber", "bre", "cly", "con", "den",
	"edi", "fin", "gas", "gre", "hol", "kie", "lon", "lvn", "lvp", "mar",
	"naf", "nap", "nwy", "pic", "pie", "por", "pru", "rom", "rum", "sev",
	"smy", "swe", "syr", "tri", "tun", "tus", "ven", "wal", "yor",
}

// Provinces whose coastline is split in two.
var vanillaSplitCoasts = map[string][]string{
	"bul": {"ec", "sc"},
	"spa": {"nc", "sc"},
	"stp": {"nc", "sc"},
}

var vanillaSeas = []string{
	"adr", "aeg", "bal", "bar", "bla", "bot", "eas", "eng", "gol", "hel",
	"ion", "iri", "mao", "nao", "nrg", "nth", "ska", "tys", "wes",
}

// Each line lists a territory followed by the troop-adjacent territories
// that sort after it.
var vanillaLandAdjacency = []string{
	"alb gre ser tri",
	"ank arm con smy",
	"apu nap rom ven",
	"arm sev smy syr",
	"bel bur hol pic ruh",
	"ber kie mun pru sil",
	"boh gal mun sil tyr vie",
	"bre gas par pic",
	"bud gal rum ser tri vie",
	"bul con gre rum ser",
	"bur gas mar mun par pic ruh",
	"cly edi lvp",
	"con smy",
	"den kie swe",
	"edi lvp yor",
	"fin nwy stp swe",
	"gal rum sil ukr vie war",
	"gas mar par spa",
	"gre ser",
	"hol kie ruh",
	"kie mun ruh",
	"lon wal yor",
	"lvn mos pru stp war",
	"lvp wal yor",
	"mar pie spa",
	"mos sev stp ukr war",
	"mun ruh sil tyr",
	"naf tun",
	"nap rom",
	"nwy stp swe",
	"par pic",
	"pie tus tyr ven",
	"por spa",
	"pru sil war",
	"rom tus ven",
	"rum ser sev ukr",
	"ser tri",
	"sev ukr",
	"sil war",
	"smy syr",
	"tri tyr ven vie",
	"tus ven",
	"tyr ven vie",
	"ukr war",
	"wal yor",
}

// Same layout as vanillaLandAdjacency, for fleet movement between seas and coasts.
var vanillaFleetAdjacency = []string{
	"adr alb/c apu/c ion tri/c ven/c",
	"aeg bul/sc con/c eas gre/c ion smy/c",
	"alb/c gre/c ion tri/c",
	"ank/c arm/c bla con/c",
	"apu/c ion nap/c ven/c",
	"arm/c bla sev/c",
	"bal ber/c bot den/c kie/c lvn/c pru/c swe/c",
	"bar nrg nwy/c stp/nc",
	"bel/c eng hol/c nth pic/c",
	"ber/c kie/c pru/c",
	"bla bul/ec con/c rum/c sev/c",
	"bot fin/c lvn/c stp/sc swe/c",
	"bre/c eng gas/c mao pic/c",
	"bul/ec con/c rum/c",
	"bul/sc con/c gre/c",
	"cly/c edi/c lvp/c nao nrg",
	"con/c smy/c",
	"den/c hel kie/c nth ska swe/c",
	"eas ion smy/c syr/c",
	"edi/c nrg nth yor/c",
	"eng iri lon/c mao nth pic/c wal/c",
	"fin/c stp/sc swe/c",
	"gas/c mao spa/nc",
	"gol mar/c pie/c spa/sc tus/c tys wes",
	"gre/c ion",
	"hel hol/c kie/c nth",
	"hol/c kie/c nth",
	"ion nap/c tun/c tys",
	"iri lvp/c mao nao wal/c",
	"lon/c nth wal/c yor/c",
	"lvn/c pru/c stp/sc",
	"lvp/c nao wal/c",
	"mao naf/c nao por/c spa/nc spa/sc wes",
	"mar/c pie/c spa/sc",
	"naf/c tun/c wes",
	"nao nrg",
	"nap/c rom/c tys",
	"nrg nth nwy/c",
	"nth nwy/c ska yor/c",
	"nwy/c ska stp/nc swe/c",
	"pie/c tus/c",
	"por/c spa/nc spa/sc",
	"rom/c tus/c tys",
	"rum/c sev/c",
	"ska swe/c",
	"smy/c syr/c",
	"spa/sc wes",
	"tri/c ven/c",
	"tun/c tys wes",
	"tus/c tys",
	"tys wes",
}

var vanillaFullNames = map[string]string{
	"adr": "Adriatic Sea",
	"aeg": "Aegean Sea",
	"alb": "Albania",
	"ank": "Ankara",
	"apu": "Apulia",
	"arm": "Armenia",
	"bal": "Baltic Sea",
	"bar": "Barents Sea",
	"bel": "Belgium",
	"ber": "Berlin",
	"bla": "Black Sea",
	"boh": "Bohemia",
	"bot": "Gulf of Bothnia",
	"bre": "Brest",
	"bud": "Budapest",
	"bul": "Bulgaria",
	"bur": "Burgundy",
	"cly": "Clyde",
	"con": "Constantinople",
	"den": "Denmark",
	"eas": "Eastern Mediterranean",
	"edi": "Edinburgh",
	"eng": "English Channel",
	"fin": "Finland",
	"gal": "Galicia",
	"gas": "Gascony",
	"gol": "Gulf of Lyon",
	"gre": "Greece",
	"hel": "Heligoland Bight",
	"hol": "Holland",
	"ion": "Ionian Sea",
	"iri": "Irish Sea",
	"kie": "Kiel",
	"lon": "London",
	"lvn": "Livonia",
	"lvp": "Liverpool",
	"mao": "Mid-Atlantic Ocean",
	"mar": "Marseilles",
	"mos": "Moscow",
	"mun": "Munich",
	"naf": "North Africa",
	"nao": "North Atlantic Ocean",
	"nap": "Naples",
	"nrg": "Norwegian Sea",
	"nth": "North Sea",
	"nwy": "Norway",
	"par": "Paris",
	"pic": "Picardy",
	"pie": "Piedmont",
	"por": "Portugal",
	"pru": "Prussia",
	"rom": "Rome",
	"ruh": "Ruhr",
	"rum": "Rumania",
	"ser": "Serbia",
	"sev": "Sevastopol",
	"sil": "Silesia",
	"ska": "Skagerrak",
	"smy": "Smyrna",
	"spa": "Spain",
	"stp": "St. Petersburg",
	"swe": "Sweden",
	"syr": "Syria",
	"tri": "Trieste",
	"tun": "Tunisia",
	"tus": "Tuscany",
	"tyr": "Tyrolia",
	"tys": "Tyrrhenian Sea",
	"ukr": "Ukraine",
	"ven": "Venice",
	"vie": "Vienna",
	"wal": "Wales",
	"war": "Warsaw",
	"wes": "Western Mediterranean",
	"yor": "Yorkshire",
}

// vanillaHomes lists each great power's home supply centers.
var vanillaHomes = map[Power][]string{
	Austria: {"bud", "tri", "vie"},
	England: {"edi", "lon", "lvp"},
	France:  {"bre", "mar", "par"},
	Germany: {"ber", "kie", "mun"},
	Italy:   {"nap", "rom", "ven"},
	Russia:  {"mos", "sev", "stp", "war"},
	Turkey:  {"ank", "con", "smy"},
}

var vanillaSupplyCenters = []string{
	"ank", "bel", "ber", "bre", "bud", "bul", "con", "den", "edi", "gre",
	"hol", "kie", "lon", "lvp", "mar", "mos", "mun", "nap", "nwy", "par",
	"por", "rom", "rum", "ser", "sev", "smy", "spa", "stp", "swe", "tri",
	"tun", "ven", "vie", "war",
}

func vanillaDescriptors() []TerritoryDescriptor {
	descs := make([]TerritoryDescriptor, 0, 75)
	for _, id := range vanillaInland {
		descs = append(descs, TerritoryDescriptor{Name: id})
	}
	for _, id := range vanillaCoastal {
		descs = append(descs, TerritoryDescriptor{Name: id, Coasts: []string{id + "/c"}})
	}
	for id, coasts := range vanillaSplitCoasts {
		d := TerritoryDescriptor{Name: id}
		for _, c := range coasts {
			d.Coasts = append(d.Coasts, id+"/"+c)
		}
		descs = append(descs, d)
	}
	for _, id := range vanillaSeas {
		descs = append(descs, TerritoryDescriptor{Name: id, Sea: true})
	}
	return descs
}

func vanillaAdjacencies() [][2]string {
	var adj [][2]string
	for _, table := range [][]string{vanillaLandAdjacency, vanillaFleetAdjacency} {
		for _, line := range table {
			fields := strings.Fields(line)
			for _, to := range fields[1:] {
				adj = append(adj, [2]string{fields[0], to})
			}
		}
	}
	return adj
}

// FullName returns the long display name of a vanilla territory ("Spain
// North Coast" for "spa/nc"), or the name itself when unknown.
func FullName(name string) string {
	land, coast, ok := strings.Cut(name, "/")
	full, known := vanillaFullNames[land]
	if !known {
		return name
	}
	if !ok {
		return full
	}
	switch coast {
	case "nc":
		return full + " North Coast"
	case "sc":
		return full + " South Coast"
	case "ec":
		return full + " East Coast"
	}
	return full + " Coast"
}

// VanillaSupplyCenters returns the 34 supply centers of the standard board.
func VanillaSupplyCenters() *SupplyCenterMap {
	sc, err := NewSupplyCenterMap(VanillaMap(), vanillaSupplyCenters...)
	if err != nil {
		panic("diplomacy: vanilla supply centers: " + err.Error())
	}
	return sc
}

// VanillaHomeCenters returns a fresh copy of each power's home centers.
func VanillaHomeCenters() map[Power]map[string]bool {
	homes := make(map[Power]map[string]bool, len(vanillaHomes))
	for p, centers := range vanillaHomes {
		set := make(map[string]bool, len(centers))
		for _, c := range centers {
			set[c] = true
		}
		homes[p] = set
	}
	return homes
}

// VanillaOwnership returns the 1901 ownership: every power owns exactly its
// home centers.
func VanillaOwnership() *OwnershipMap {
	own, err := NewOwnershipMap(VanillaSupplyCenters(), VanillaHomeCenters(), VanillaHomeCenters())
	if err != nil {
		panic("diplomacy: vanilla ownership: " + err.Error())
	}
	return own
}

// VanillaStartingUnits returns the spring 1901 unit placement.
func VanillaStartingUnits() PlayerUnits {
	place := func(specs ...string) map[Unit]bool {
		set := make(map[Unit]bool, len(specs))
		for _, s := range specs {
			ut := Troop
			if s[0] == 'F' {
				ut = Fleet
			}
			set[Unit{Type: ut, Position: s[2:]}] = true
		}
		return set
	}
	return PlayerUnits{
		Austria: place("A vie", "A bud", "F tri/c"),
		England: place("F lon/c", "F edi/c", "A lvp"),
		France:  place("A par", "A mar", "F bre/c"),
		Germany: place("A ber", "A mun", "F kie/c"),
		Italy:   place("A rom", "A ven", "F nap/c"),
		Russia:  place("A mos", "A war", "F sev/c", "F stp/sc"),
		Turkey:  place("A con", "A smy", "F ank/c"),
	}
}
