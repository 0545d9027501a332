package domain

import "math"

// epsilon keeps the angle denominator away from zero for degenerate vectors.
const epsilon = 1e-6

// Angles holds the three ergonomic measurements, in degrees.
type Angles struct {
	Wrist float64
	Neck  float64
	Spine float64
}

// AngleBetween returns the angle in degrees at vertex b formed by the rays
// b->a and b->c. The cosine is clamped to [-1, 1] before the inverse cosine
// so near-parallel vectors cannot overshoot the domain. Range [0, 180].
func AngleBetween(a, b, c Point) float64 {
	v1 := Point{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
	v2 := Point{X: c.X - b.X, Y: c.Y - b.Y, Z: c.Z - b.Z}

	dot := v1.X*v2.X + v1.Y*v2.Y + v1.Z*v2.Z
	norm1 := math.Sqrt(v1.X*v1.X + v1.Y*v1.Y + v1.Z*v1.Z)
	norm2 := math.Sqrt(v2.X*v2.X + v2.Y*v2.Y + v2.Z*v2.Z)

	cos := dot / (norm1*norm2 + epsilon)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// LineAngleFromVertical returns the angle in degrees of the 2-D projected
// segment a->b relative to the vertical axis. Range [0, 180].
func LineAngleFromVertical(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Abs(math.Atan2(dx, dy) * 180 / math.Pi)
}

// DeriveAngles computes the wrist, neck and spine angles for one frame.
// The wrist angle is the smaller of the two elbow-wrist-finger angles, with
// the finger point taken as the midpoint of index and pinky. Returns
// ErrIncompleteFrame when any required landmark is absent.
func DeriveAngles(f Frame) (Angles, error) {
	for _, id := range required {
		if _, ok := f[id]; !ok {
			return Angles{}, ErrIncompleteFrame
		}
	}

	shoulderMid := midpoint(f[LeftShoulder], f[RightShoulder])
	hipMid := midpoint(f[LeftHip], f[RightHip])
	leftFingerMid := midpoint(f[LeftIndex], f[LeftPinky])
	rightFingerMid := midpoint(f[RightIndex], f[RightPinky])

	leftWrist := AngleBetween(f[LeftElbow], f[LeftWrist], leftFingerMid)
	rightWrist := AngleBetween(f[RightElbow], f[RightWrist], rightFingerMid)

	return Angles{
		Wrist: math.Min(leftWrist, rightWrist),
		Neck:  LineAngleFromVertical(f[Nose], shoulderMid),
		Spine: LineAngleFromVertical(shoulderMid, hipMid),
	}, nil
}
