package domain

import "errors"

var ErrIncompleteFrame = errors.New("frame is missing a required landmark")

// LandmarkID identifies an anatomical point. Values follow the MediaPipe
// pose topology so frames from a stock pose estimator map straight through.
type LandmarkID int

const (
	Nose          LandmarkID = 0
	LeftShoulder  LandmarkID = 11
	RightShoulder LandmarkID = 12
	LeftElbow     LandmarkID = 13
	RightElbow    LandmarkID = 14
	LeftWrist     LandmarkID = 15
	RightWrist    LandmarkID = 16
	LeftPinky     LandmarkID = 17
	RightPinky    LandmarkID = 18
	LeftIndex     LandmarkID = 19
	RightIndex    LandmarkID = 20
	LeftHip       LandmarkID = 23
	RightHip      LandmarkID = 24
)

// Point is a 3-D landmark position in normalized image coordinates.
type Point struct {
	X float64
	Y float64
	Z float64
}

// Frame is one complete set of landmarks from one detection pass. Transient.
type Frame map[LandmarkID]Point

// required lists the landmarks the three ergonomic metrics depend on.
var required = []LandmarkID{
	Nose,
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftPinky, RightPinky,
	LeftIndex, RightIndex,
	LeftHip, RightHip,
}

func midpoint(a, b Point) Point {
	return Point{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
		Z: (a.Z + b.Z) / 2,
	}
}
