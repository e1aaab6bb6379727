package systems

import (
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gulp/components"
	"github.com/pthm-cable/gulp/config"
)

var up = r3.Vec{Y: 1}

// BarrierHit records a sphere-vs-box contact.
type BarrierHit struct {
	Body     WorldBody
	Closest  r3.Vec  // closest point on the box to the player center
	Distance float64 // player center to Closest
	Inside   bool    // player center is inside the box
}

// Contacts partitions the bodies touching the player. No body appears in more
// than one list.
type Contacts struct {
	Absorbable  []WorldBody
	Blocking    []WorldBody
	BarrierHits []BarrierHit
}

// Reset empties the lists, keeping their storage.
func (c *Contacts) Reset() {
	c.Absorbable = c.Absorbable[:0]
	c.Blocking = c.Blocking[:0]
	c.BarrierHits = c.BarrierHits[:0]
}

// Detector classifies bodies overlapping the player each tick.
type Detector struct {
	grid      *SpatialGrid // nil = brute force
	workers   int
	threshold int

	candidates []int
	shards     []Contacts
	contacts   Contacts
}

// NewDetector creates a detector. A zero grid cell size disables the broad phase.
func NewDetector(cfg *config.Config) *Detector {
	d := &Detector{
		workers:   max(cfg.Collision.Workers, 1),
		threshold: cfg.Collision.ParallelThreshold,
	}
	if cfg.Collision.GridCellSize > 0 {
		d.grid = NewSpatialGrid(cfg.Arena.MapSize, cfg.Collision.GridCellSize)
	}
	d.shards = make([]Contacts, d.workers)
	return d
}

// Detect scans bodies against the player. The returned Contacts reuses the
// detector's storage and is valid until the next call.
func (d *Detector) Detect(player components.Player, bodies []WorldBody) Contacts {
	d.contacts.Reset()
	d.candidates = d.candidates[:0]

	maxRadius := 0.0
	for i := range bodies {
		b := &bodies[i]
		if b.IsBarrier {
			if hit, ok := BarrierContact(player, *b); ok {
				d.contacts.BarrierHits = append(d.contacts.BarrierHits, hit)
			}
			continue
		}
		maxRadius = math.Max(maxRadius, b.EffectiveRadius)
		if d.grid == nil {
			d.candidates = append(d.candidates, i)
		}
	}

	if d.grid != nil {
		d.grid.Build(bodies)
		d.candidates = d.grid.QueryRadiusInto(d.candidates, player.Position, player.Radius+maxRadius)
	}

	n := len(d.candidates)
	if d.workers > 1 && n >= d.threshold {
		d.scanParallel(player, bodies)
	} else {
		classifyInto(&d.contacts, player, bodies, d.candidates)
	}
	return d.contacts
}

// scanParallel shards candidates across workers. Each worker writes only its
// own shard; shards merge in order after every worker has joined.
func (d *Detector) scanParallel(player components.Player, bodies []WorldBody) {
	n := len(d.candidates)
	chunk := (n + d.workers - 1) / d.workers

	var g errgroup.Group
	for w := 0; w < d.workers; w++ {
		start := w * chunk
		end := min(start+chunk, n)
		shard := &d.shards[w]
		shard.Reset()
		if start >= end {
			continue
		}
		idx := d.candidates[start:end]
		g.Go(func() error {
			classifyInto(shard, player, bodies, idx)
			return nil
		})
	}
	_ = g.Wait()

	for w := range d.shards {
		d.contacts.Absorbable = append(d.contacts.Absorbable, d.shards[w].Absorbable...)
		d.contacts.Blocking = append(d.contacts.Blocking, d.shards[w].Blocking...)
	}
}

// classifyInto appends every candidate overlapping the player to absorbable
// (smaller than the player) or blocking.
func classifyInto(dst *Contacts, player components.Player, bodies []WorldBody, idx []int) {
	for _, i := range idx {
		b := &bodies[i]
		reach := player.Radius + b.EffectiveRadius
		if r3.Norm2(r3.Sub(player.Position, b.Position)) >= reach*reach {
			continue
		}
		if b.NominalSize < player.Radius {
			dst.Absorbable = append(dst.Absorbable, *b)
		} else {
			dst.Blocking = append(dst.Blocking, *b)
		}
	}
}

// ClosestPointOnBox returns the point of an oriented box closest to p, and
// whether p lies inside it. p is moved into the box's local frame, clamped per
// axis to the half extents, then moved back to world space. Boundary boxes
// have no upper Y limit.
func ClosestPointOnBox(p, center r3.Vec, box components.Barrier) (r3.Vec, bool) {
	local := r3.Sub(p, center)
	if box.Yaw != 0 {
		local = r3.NewRotation(-box.Yaw, up).Rotate(local)
	}

	h := box.HalfExtents
	top := h.Y
	if box.Boundary {
		top = math.Inf(1)
	}
	clamped := r3.Vec{
		X: clampFloat(local.X, -h.X, h.X),
		Y: clampFloat(local.Y, -h.Y, top),
		Z: clampFloat(local.Z, -h.Z, h.Z),
	}
	inside := clamped == local

	if box.Yaw != 0 {
		clamped = r3.NewRotation(box.Yaw, up).Rotate(clamped)
	}
	return r3.Add(center, clamped), inside
}

// BarrierContact runs the sphere-vs-oriented-box test for one barrier.
func BarrierContact(player components.Player, barrier WorldBody) (BarrierHit, bool) {
	closest, inside := ClosestPointOnBox(player.Position, barrier.Position, barrier.Box)
	dist := r3.Norm(r3.Sub(player.Position, closest))
	if !inside && dist >= player.Radius {
		return BarrierHit{}, false
	}
	return BarrierHit{
		Body:     barrier,
		Closest:  closest,
		Distance: dist,
		Inside:   inside,
	}, true
}
