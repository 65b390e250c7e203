package collector

import (
	"time"

	"github.com/zeusync/warehouse/internal/core/models"
)

// fadeOut anchors root and its subtree, ramps transparency to 1 over d in
// steps, and destroys root when the ramp ends. Nothing observes completion.
func fadeOut(space Space, root models.EntityID, d time.Duration, steps int) {
	parts := subtree(space, root)
	for _, id := range parts {
		space.SetAnchored(id, true)
		space.SetCanCollide(id, false)
	}
	if steps < 1 {
		steps = 1
	}
	for i := 1; i <= steps; i++ {
		alpha := float64(i) / float64(steps)
		space.After(d*time.Duration(i)/time.Duration(steps), func() {
			for _, id := range parts {
				space.SetTransparency(id, alpha)
			}
		})
	}
	space.After(d, func() { space.Destroy(root) })
}

func subtree(space Space, root models.EntityID) []models.EntityID {
	out := []models.EntityID{root}
	for i := 0; i < len(out); i++ {
		out = append(out, space.Children(out[i])...)
	}
	return out
}
