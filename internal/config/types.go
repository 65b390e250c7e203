package config

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/warehouse/internal/core/systems/physics"
)

// Duration reads Go duration strings such as "1s" or "100ms".
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d Duration) MarshalYAML() (any, error) { return d.String(), nil }

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "config: duration %q", s)
	}
	*d = Duration(v)
	return nil
}

// Vec is written as a three element list.
type Vec []float64

func V(x, y, z float64) Vec { return Vec{x, y, z} }

func (v Vec) Vec3() physics.Vec3 {
	if len(v) < 3 {
		return physics.Vec3{}
	}
	return physics.V(v[0], v[1], v[2])
}
