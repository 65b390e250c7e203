package vehicle

import "math"

// Model is the closed set of drivable vehicles.
type Model uint8

const (
	Forklift Model = iota
	Truck
	SemiTruck
)

func (m Model) String() string {
	switch m {
	case Forklift:
		return "forklift"
	case Truck:
		return "truck"
	case SemiTruck:
		return "semi_truck"
	default:
		return "unknown"
	}
}

func ParseModel(s string) (Model, error) {
	switch s {
	case "forklift":
		return Forklift, nil
	case "truck":
		return Truck, nil
	case "semi_truck", "semitruck":
		return SemiTruck, nil
	default:
		return 0, ErrUnknownModel
	}
}

// Probes is how many pallet probes the model must be linked to.
func (m Model) Probes() int {
	switch m {
	case Forklift:
		return 1
	case SemiTruck:
		return 2
	default:
		return 0
	}
}

// Handling is the kinematic drive tuning of a model.
type Handling struct {
	// MaxSpeed in studs per second at full throttle.
	MaxSpeed float64
	// SteerRate in radians per second at full lock.
	SteerRate float64
}

func (m Model) Handling() Handling {
	switch m {
	case Forklift:
		return Handling{MaxSpeed: 10, SteerRate: 25 * math.Pi / 180}
	default:
		return Handling{MaxSpeed: 20, SteerRate: 30 * math.Pi / 180}
	}
}

// Key is a driver key code as sent by clients.
type Key string

const (
	KeyW Key = "W"
	KeyA Key = "A"
	KeyS Key = "S"
	KeyD Key = "D"
	KeyQ Key = "Q"
	KeyE Key = "E"
	KeyF Key = "F"
	KeyG Key = "G"
)

// Actuator is the commanded direction of a prismatic part (forks, roof door).
type Actuator uint8

const (
	Hold Actuator = iota
	Raise
	Lower
)

func (a Actuator) String() string {
	switch a {
	case Raise:
		return "up"
	case Lower:
		return "down"
	default:
		return "neutral"
	}
}
