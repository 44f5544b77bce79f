package scenario

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/freeeve/dipjudge/pkg/diplomacy"
)

func load(t *testing.T, name string) *Scenario {
	t.Helper()
	sc, err := Load(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return sc
}

func run(t *testing.T, name string) *Report {
	t.Helper()
	r, err := Run(context.Background(), load(t, name), Options{})
	if err != nil {
		if r != nil {
			t.Logf("mismatches: %v", r.Mismatches)
		}
		t.Fatal(err)
	}
	return r
}

func TestRunOpening(t *testing.T) {
	r := run(t, "opening.yaml")
	if len(r.Phases) != 3 {
		t.Fatalf("expected 3 phases, got %d", len(r.Phases))
	}

	spring := r.Phases[0]
	if spring.Phase != diplomacy.PhaseMovement || spring.Season != diplomacy.Spring || len(spring.Orders) != 22 {
		t.Errorf("unexpected first phase %+v", spring)
	}
	for _, o := range spring.Orders {
		if o.Order == "F kie/c - den/c" && o.Result != "succeeded" {
			t.Errorf("expected the move to Denmark to succeed, got %s", o.Result)
		}
	}

	build := r.Phases[2]
	if build.Phase != diplomacy.PhaseAdjustment || build.Deltas[diplomacy.Germany] != 2 {
		t.Errorf("expected Germany +2 in the adjustment phase, got %+v", build.Deltas)
	}
	if r.Phases[0].TurnID == "" || r.Phases[0].TurnID == r.Phases[1].TurnID {
		t.Error("each phase should get its own turn id")
	}
}

func TestRunRetreat(t *testing.T) {
	r := run(t, "retreat.yaml")
	exits := r.Phases[0].Retreats[diplomacy.Italy]
	if len(exits) != 1 || exits[0].Unit != "A ven" {
		t.Fatalf("expected A ven to be dislodged, got %+v", exits)
	}
	if r.Phases[1].Phase != diplomacy.PhaseRetreat {
		t.Errorf("expected a retreat phase, got %s", r.Phases[1].Phase)
	}
}

func TestRunCivilDisorder(t *testing.T) {
	r := run(t, "civil_disorder.yaml")
	if r.Phases[0].Deltas[diplomacy.Russia] != -2 {
		t.Errorf("expected Russia -2, got %v", r.Phases[0].Deltas)
	}
}

func TestRunStrictRejectsCivilDisorder(t *testing.T) {
	_, err := Run(context.Background(), load(t, "civil_disorder.yaml"), Options{Strict: true})
	if !errors.Is(err, diplomacy.ErrAdjustmentCount) {
		t.Fatalf("expected adjustment count error, got %v", err)
	}
}

func TestRunReportsMismatches(t *testing.T) {
	sc := load(t, "retreat.yaml")
	sc.Expect.Units["italy"] = []string{"A nap", "A tyr"}

	r, err := Run(context.Background(), sc, Options{})
	if !errors.Is(err, ErrExpectationFailed) {
		t.Fatalf("expected expectation failure, got %v", err)
	}
	if len(r.Mismatches) != 1 || !strings.Contains(r.Mismatches[0], "italy units") {
		t.Errorf("unexpected mismatches %v", r.Mismatches)
	}
}

func TestRunIllegalOrder(t *testing.T) {
	sc, err := Parse([]byte(`
phases:
  - orders:
      austria: ["A vie - ber"]
`))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Run(context.Background(), sc, Options{})
	var le *diplomacy.LegalityError
	if !errors.As(err, &le) || !errors.Is(err, diplomacy.ErrNotAdjacent) {
		t.Fatalf("expected not adjacent, got %v", err)
	}
}

func TestRunStepCap(t *testing.T) {
	sc, err := Parse([]byte(`
phases:
  - orders:
      austria: ["A vie - gal", "A bud - gal"]
`))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Run(context.Background(), sc, Options{MaxSteps: 1})
	if !errors.Is(err, diplomacy.ErrResolutionDiverged) {
		t.Fatalf("expected divergence, got %v", err)
	}
}

func TestParseRejectsInvalidScenarios(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown power", "phases:\n  - orders:\n      prussia: [\"A ber H\"]\n"},
		{"no phases", "name: empty\n"},
		{"unknown field", "phases: [{orders: {}}]\nturn: 3\n"},
		{"bad phase", "phase: retreat\nphases: [{orders: {}}]\n"},
		{"bad position", "position: spring\nphases: [{orders: {}}]\n"},
		{"not yaml", "phases: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := Load(filepath.Join("testdata", "invalid.yaml")); err == nil {
		t.Error("expected invalid.yaml to be rejected")
	}
}

func TestStateRejectsCollidingUnits(t *testing.T) {
	sc, err := Parse([]byte(`
units:
  austria: ["A vie"]
  germany: ["A vie"]
phases: [{orders: {}}]
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.State(); err == nil {
		t.Error("expected two units in vie to be rejected")
	}
}

func TestStateOwnershipOverride(t *testing.T) {
	sc, err := Parse([]byte(`
ownership:
  germany: [ber, kie, mun, war]
phases: [{orders: {}}]
`))
	if err != nil {
		t.Fatal(err)
	}
	gs, err := sc.State()
	if err != nil {
		t.Fatal(err)
	}
	if o, _ := gs.Ownership.Owner("war"); o != diplomacy.Germany {
		t.Errorf("expected Germany to own war, got %q", o)
	}
	if gs.SupplyCenterCount(diplomacy.Russia) != 3 {
		t.Errorf("expected Russia to keep 3 centers, got %d", gs.SupplyCenterCount(diplomacy.Russia))
	}
}

func TestWriteText(t *testing.T) {
	r := run(t, "retreat.yaml")
	var buf bytes.Buffer
	if err := WriteText(&buf, r); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"== Spring 1901 movement ==", "A ven R rom", "retreat:", "== Board: Fall 1901 movement =="} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	r := run(t, "opening.yaml")
	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		t.Fatal(err)
	}
	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Final.Year != 1902 || len(decoded.Final.Units[diplomacy.Germany]) != 5 {
		t.Errorf("unexpected final board %+v", decoded.Final)
	}
}

func TestRunFromPosition(t *testing.T) {
	sc, err := Parse([]byte(`
name: retreat from a position
position: 1901sr/Afadr,Aaven,Aavie,Iatyr/Abud,Atri,Avie,Inap,Irom,Iven/Iaven>apu|pie|rom|tus
phases:
  - orders:
      italy: ["A ven R tus"]
expect:
  season: fall
  phase: movement
  units:
    italy: [A tus, A tyr]
`))
	if err != nil {
		t.Fatal(err)
	}
	r, err := Run(context.Background(), sc, Options{})
	if err != nil {
		t.Fatalf("%v: %v", err, r.Mismatches)
	}
	if !strings.HasPrefix(r.Final.Position, "1901fm/Afadr,Aaven,Aavie,Iatus,Iatyr/") {
		t.Errorf("unexpected final position %s", r.Final.Position)
	}
}

func TestStateRejectsPositionWithUnits(t *testing.T) {
	sc, err := Parse([]byte(`
position: 1901sm/Aavie/Avie/-
units:
  austria: ["A bud"]
phases: [{orders: {}}]
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.State(); err == nil {
		t.Error("expected position and units together to be rejected")
	}
}

func TestFinalPositionRoundTrips(t *testing.T) {
	r := run(t, "opening.yaml")
	gs, err := diplomacy.DecodePosition(r.Final.Position)
	if err != nil {
		t.Fatal(err)
	}
	if gs.Year != 1902 || gs.UnitCount(diplomacy.Germany) != 5 {
		t.Errorf("decoded %s does not match the final board", r.Final.Position)
	}
}
