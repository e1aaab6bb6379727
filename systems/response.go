package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gulp/components"
	"github.com/pthm-cable/gulp/config"
)

// Response summarizes the corrections applied to the player in one tick.
type Response struct {
	VelocityDelta r3.Vec
	Correction    r3.Vec
	Blocking      int // blocking contacts that were still penetrating
	Barriers      int // barrier contacts resolved
	Bounces       int // barrier contacts that reflected velocity
}

// Responder pushes the player out of blocking bodies and barriers.
// Blocking bodies are static: they never receive a reactive velocity.
type Responder struct {
	baseForce         float64
	forceScale        float64
	sizeFactorCap     float64
	correctionRatio   float64
	maxCorrectionStep float64
	overshoot         float64
	restitution       float64
}

// NewResponder creates a responder from the collision config.
func NewResponder(cfg *config.Config) *Responder {
	c := cfg.Collision
	return &Responder{
		baseForce:         c.BaseForce,
		forceScale:        c.ForceScale,
		sizeFactorCap:     c.SizeFactorCap,
		correctionRatio:   c.CorrectionRatio,
		maxCorrectionStep: c.MaxCorrectionStep,
		overshoot:         c.BarrierOvershoot,
		restitution:       c.BarrierRestitution,
	}
}

// Resolve applies blocking impulses then barrier push-outs to player.
func (r *Responder) Resolve(player *components.Player, contacts Contacts) Response {
	var res Response
	for i := range contacts.Blocking {
		dv, dp, ok := r.resolveBlocking(player, &contacts.Blocking[i])
		if !ok {
			continue
		}
		res.Blocking++
		res.VelocityDelta = r3.Add(res.VelocityDelta, dv)
		res.Correction = r3.Add(res.Correction, dp)
	}

	for i := range contacts.BarrierHits {
		// Earlier corrections may have moved the player; re-test from the current position.
		r.separateFrom(player, contacts.BarrierHits[i].Body, &res)
	}

	groundClamp(player)
	return res
}

// Separate pushes the player out of every barrier it overlaps at its current
// radius. The tick calls it again after growth, since a larger sphere can
// reach into a wall it was clear of during Resolve.
func (r *Responder) Separate(player *components.Player, barriers []WorldBody) Response {
	var res Response
	for i := range barriers {
		r.separateFrom(player, barriers[i], &res)
	}
	groundClamp(player)
	return res
}

func (r *Responder) separateFrom(player *components.Player, barrier WorldBody, res *Response) {
	hit, ok := BarrierContact(*player, barrier)
	if !ok {
		return
	}
	dv, dp, bounced := r.resolveBarrier(player, hit)
	res.Barriers++
	if bounced {
		res.Bounces++
	}
	res.VelocityDelta = r3.Add(res.VelocityDelta, dv)
	res.Correction = r3.Add(res.Correction, dp)
}

func groundClamp(player *components.Player) {
	if player.Position.Y < player.Radius {
		player.Position.Y = player.Radius
	}
}

// resolveBlocking applies a log-scaled outward impulse and a capped positional
// correction for one penetrating blocking body.
func (r *Responder) resolveBlocking(player *components.Player, body *WorldBody) (dv, dp r3.Vec, ok bool) {
	offset := r3.Sub(player.Position, body.Position)
	overlap := player.Radius + body.EffectiveRadius - r3.Norm(offset)
	if overlap <= 0 {
		return r3.Vec{}, r3.Vec{}, false
	}

	dir, ok := safeUnit(offset)
	if !ok {
		dir, ok = safeUnit(r3.Scale(-1, player.Velocity))
		if !ok {
			dir = r3.Vec{X: 1}
		}
	}

	sizeFactor := math.Min(body.NominalSize/player.Radius, r.sizeFactorCap)
	force := overlap * (r.baseForce + math.Log(sizeFactor+1)*r.forceScale)
	dv = r3.Scale(force, dir)
	player.Velocity = r3.Add(player.Velocity, dv)

	step := math.Min(overlap*r.correctionRatio, r.maxCorrectionStep)
	dp = r3.Scale(step, dir)
	player.Position = r3.Add(player.Position, dp)

	return dv, dp, true
}

// resolveBarrier pushes the player out along the contact normal and bounces
// the horizontal velocity if the player was moving into the barrier.
func (r *Responder) resolveBarrier(player *components.Player, hit BarrierHit) (dv, dp r3.Vec, bounced bool) {
	normal, depth := barrierNormal(*player, hit)

	dp = r3.Scale(depth*(1+r.overshoot), normal)
	player.Position = r3.Add(player.Position, dp)

	before := player.Velocity
	if r3.Dot(player.Velocity, normal) < 0 {
		if nh, ok := safeUnit(horizontal(normal)); ok {
			vh := horizontal(player.Velocity)
			reflected := r3.Sub(vh, r3.Scale(2*r3.Dot(vh, nh), nh))
			reflected = r3.Scale(r.restitution, reflected)
			player.Velocity.X = reflected.X
			player.Velocity.Z = reflected.Z
		} else {
			// Landing on a barrier top.
			player.Velocity.Y = -player.Velocity.Y * r.restitution
		}
		bounced = true
	}
	return r3.Sub(player.Velocity, before), dp, bounced
}

// barrierNormal returns the outward push direction and penetration depth.
// With the player center outside the box the normal points from the closest
// point to the center. Inside, it is the normal of the side or top face of
// least penetration and the depth includes the distance to that face.
// Boundary barriers offer no top face, and their side faces always open
// toward the arena center.
func barrierNormal(player components.Player, hit BarrierHit) (r3.Vec, float64) {
	if !hit.Inside {
		if n, ok := safeUnit(r3.Sub(player.Position, hit.Closest)); ok {
			return n, player.Radius - hit.Distance
		}
	}

	box := hit.Body.Box
	local := r3.Sub(player.Position, hit.Body.Position)
	if box.Yaw != 0 {
		local = r3.NewRotation(-box.Yaw, up).Rotate(local)
	}

	h := box.HalfExtents
	sx, sz := sign(local.X), sign(local.Z)
	top := h.Y - local.Y
	if box.Boundary {
		inward := r3.Scale(-1, hit.Body.Position)
		if box.Yaw != 0 {
			inward = r3.NewRotation(-box.Yaw, up).Rotate(inward)
		}
		sx, sz = sign(inward.X), sign(inward.Z)
		top = math.Inf(1)
	}

	// Barriers stand on the ground, so the bottom face is never a way out.
	faces := [3]struct {
		gap  float64
		axis r3.Vec
	}{
		{h.X - sx*local.X, r3.Vec{X: sx}},
		{h.Z - sz*local.Z, r3.Vec{Z: sz}},
		{top, r3.Vec{Y: 1}},
	}
	best := faces[0]
	for _, f := range faces[1:] {
		if f.gap < best.gap {
			best = f
		}
	}

	normal := best.axis
	if box.Yaw != 0 {
		normal = r3.NewRotation(box.Yaw, up).Rotate(normal)
	}
	return normal, player.Radius + math.Max(best.gap, 0)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
