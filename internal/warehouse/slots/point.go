package slots

import (
	"github.com/zeusync/warehouse/internal/core/host"
	"github.com/zeusync/warehouse/internal/core/models"
	"github.com/zeusync/warehouse/internal/core/systems/physics"
)

// Point is a fixed local anchor on a fixture. Key orders slots vertically:
// lower keys fill first, higher keys drain first.
type Point struct {
	Index int
	Name  string
	Local physics.Pose
	Key   float64
}

// NewPoint keys the point by its local height.
func NewPoint(index int, name string, local physics.Pose) Point {
	return Point{Index: index, Name: name, Local: local, Key: local.Pos.Y}
}

// World returns the point's pose given the fixture root pose.
func (p Point) World(root physics.Pose) physics.Pose {
	return root.Mul(p.Local)
}

type geometry interface {
	host.Hierarchy
	host.Posing
}

// Discover enumerates the attachment points under root: its direct children
// tagged as attachments, in child order, with poses relative to root.
func Discover(g geometry, root models.EntityID) ([]Point, error) {
	rootPose, ok := g.Pose(root)
	if !ok {
		return nil, host.ErrUnknownEntity
	}
	var points []Point
	for _, child := range g.Children(root) {
		if !g.HasTag(child, models.TagAttachment) {
			continue
		}
		pose, ok := g.Pose(child)
		if !ok {
			continue
		}
		points = append(points, NewPoint(len(points), g.Name(child), rootPose.ToLocal(pose)))
	}
	if len(points) == 0 {
		return nil, ErrNoAttachmentPoints
	}
	return points, nil
}
