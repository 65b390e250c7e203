package fixture

import (
	"time"

	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/warehouse/debounce"
	"github.com/zeusync/warehouse/internal/warehouse/slots"
)

// Kind is the closed set of storage fixtures.
type Kind uint8

const (
	Rack Kind = iota
	Pallet
	Shelf
)

func (k Kind) String() string {
	switch k {
	case Rack:
		return "rack"
	case Pallet:
		return "pallet"
	case Shelf:
		return "shelf"
	default:
		return "unknown"
	}
}

// Tag is the host tag carried by the fixture root.
func (k Kind) Tag() string {
	switch k {
	case Pallet:
		return models.TagPallet
	case Shelf:
		return models.TagShelf
	default:
		return models.TagRack
	}
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "rack":
		return Rack, nil
	case "pallet":
		return Pallet, nil
	case "shelf":
		return Shelf, nil
	default:
		return 0, ErrUnknownKind
	}
}

// Settings pick the allocation and debounce behavior of one fixture.
type Settings struct {
	Kind     Kind
	Grace    time.Duration
	Policy   slots.Policy
	Debounce debounce.Mode
	// Take enables draining the fixture into an agent's hands.
	Take bool
}

// DefaultSettings returns the behavior each kind ships with. Racks and
// pallets fill bottom-up and drain top-down; shelves fill in declaration
// order behind a short fixture-wide debounce and are never drained by hand.
func DefaultSettings(kind Kind) Settings {
	if kind == Shelf {
		return Settings{
			Kind:     Shelf,
			Grace:    100 * time.Millisecond,
			Policy:   slots.RegistrationOrder,
			Debounce: debounce.FixtureWide,
		}
	}
	return Settings{
		Kind:     kind,
		Grace:    time.Second,
		Policy:   slots.BottomUp,
		Debounce: debounce.PerCarryable,
		Take:     true,
	}
}
