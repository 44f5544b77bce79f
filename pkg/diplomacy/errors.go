package diplomacy

import (
	"errors"
	"fmt"
)

// Board construction errors.
var (
	ErrInvalidMap       = errors.New("invalid map")
	ErrUnknownTerritory = errors.New("unknown territory")
)

// Order legality errors, reported wrapped in a *LegalityError.
var (
	ErrNotAdjacent   = errors.New("destination not reachable")
	ErrWrongUnitType = errors.New("unit type cannot enter territory")
	ErrSelfSupport   = errors.New("unit cannot support itself")
	ErrNotOwnUnit    = errors.New("unit does not belong to player")
	ErrNotConvoyable = errors.New("territory is not convoy compatible")
	ErrUnsupportable = errors.New("supported action is not possible")
	ErrInvalidOrder  = errors.New("malformed order")
)

// Phase protocol errors, reported wrapped in a *ProtocolError.
var (
	ErrRetreatMismatch     = errors.New("retreat orders do not match required retreats")
	ErrAdjustmentCount     = errors.New("adjustment count does not match entitlement")
	ErrAdjustmentKind      = errors.New("adjustment kind does not match entitlement")
	ErrDuplicateAdjustment = errors.New("duplicate adjustment")
	ErrUnknownUnit         = errors.New("unit does not exist")
	ErrDuplicateOrder      = errors.New("more than one order for a territory")
)

// ErrResolutionDiverged means the resolver exceeded its step limit. It
// indicates a bug or a malformed order set, never a game outcome.
var ErrResolutionDiverged = errors.New("resolution did not converge")

// LegalityError reports an order rejected at construction time.
type LegalityError struct {
	Order string
	Err   error
}

func (e *LegalityError) Error() string {
	return fmt.Sprintf("illegal order %q: %v", e.Order, e.Err)
}

func (e *LegalityError) Unwrap() error { return e.Err }

func illegal(order string, err error) error {
	return &LegalityError{Order: order, Err: err}
}

// ProtocolError reports a malformed order set for a phase. Nothing from the
// offending call has been applied.
type ProtocolError struct {
	Phase  PhaseType
	Player Power
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Player == "" {
		return fmt.Sprintf("%s phase: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s phase, %s: %v", e.Phase, e.Player, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
