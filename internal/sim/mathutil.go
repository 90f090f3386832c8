package sim

import "math"

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// pointSegmentDistance is the 2D playfield-plane distance from p to the
// segment a-b.
func pointSegmentDistance(p, a, b Vec3) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		dx := p.X - a.X
		dy := p.Y - a.Y
		return fix(math.Sqrt(dx*dx + dy*dy))
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
	t = clamp01(t)
	cx := a.X + t*abx
	cy := a.Y + t*aby
	dx := p.X - cx
	dy := p.Y - cy
	return fix(math.Sqrt(dx*dx + dy*dy))
}

// colliderOverlap tests a ball against one collider and returns the
// penetration depth on hit. Kicker circles capture on center entry; all
// other primitives collide on surface overlap.
func colliderOverlap(col *Collider, b *Ball) (float64, bool) {
	if b.Position.Z+b.Radius < col.ZLow || b.Position.Z-b.Radius > col.ZHigh {
		return 0, false
	}
	switch col.Kind {
	case KickerCollider:
		dx := b.Position.X - col.Center.X
		dy := b.Position.Y - col.Center.Y
		dist := fix(math.Sqrt(dx*dx + dy*dy))
		if dist < col.Radius {
			return fix(col.Radius - dist), true
		}
	case CircleCollider:
		dx := b.Position.X - col.Center.X
		dy := b.Position.Y - col.Center.Y
		dist := fix(math.Sqrt(dx*dx + dy*dy))
		reach := col.Radius + b.Radius
		if dist < reach {
			return fix(reach - dist), true
		}
	case SegmentCollider:
		dist := pointSegmentDistance(b.Position, col.P1, col.P2)
		if dist < b.Radius {
			return fix(b.Radius - dist), true
		}
	}
	return 0, false
}
