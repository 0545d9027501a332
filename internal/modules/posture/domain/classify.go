package domain

import "fmt"

// Status is the three-level posture classification. Severity order is
// bad > ok > good; the worst metric always dominates.
type Status string

const (
	StatusGood Status = "good"
	StatusOK   Status = "ok"
	StatusBad  Status = "bad"
)

func (s Status) Validate() error {
	switch s {
	case StatusGood, StatusOK, StatusBad:
		return nil
	default:
		return fmt.Errorf("unknown status %q", s)
	}
}

func (s Status) severity() int {
	switch s {
	case StatusBad:
		return 2
	case StatusOK:
		return 1
	default:
		return 0
	}
}

// Per-metric thresholds, degrees. Bounds are fixed clinical constants, not
// configuration.
const (
	wristGoodMin = 140 // straight wrist
	wristOKMin   = 110 // mild flexion, acceptable short-term

	neckGoodMax = 35
	neckOKMax   = 50

	spineGoodMin = 5
	spineGoodMax = 80
	spineBadMin  = 90
)

// ClassifyWrist: >=140 good, [110,140) ok, <110 bad.
func ClassifyWrist(angle float64) Status {
	switch {
	case angle >= wristGoodMin:
		return StatusGood
	case angle >= wristOKMin:
		return StatusOK
	default:
		return StatusBad
	}
}

// ClassifyNeck: <=35 good, (35,50] ok, >50 bad.
func ClassifyNeck(angle float64) Status {
	switch {
	case angle <= neckGoodMax:
		return StatusGood
	case angle <= neckOKMax:
		return StatusOK
	default:
		return StatusBad
	}
}

// ClassifySpine: [5,80] good, <90 otherwise ok, >=90 bad.
func ClassifySpine(angle float64) Status {
	switch {
	case angle >= spineGoodMin && angle <= spineGoodMax:
		return StatusGood
	case angle < spineBadMin:
		return StatusOK
	default:
		return StatusBad
	}
}

// Combine folds the three per-metric statuses into one overall status:
// any bad wins, else any ok, else good.
func Combine(wrist, neck, spine Status) Status {
	worst := wrist
	for _, s := range []Status{neck, spine} {
		if s.severity() > worst.severity() {
			worst = s
		}
	}
	return worst
}

// Classify derives the angles for a frame and combines the per-metric
// statuses. An incomplete frame is an expected condition, not an error: it
// classifies as bad with zero angles.
func Classify(f Frame) (Status, Angles) {
	angles, err := DeriveAngles(f)
	if err != nil {
		return StatusBad, Angles{}
	}
	return Combine(
		ClassifyWrist(angles.Wrist),
		ClassifyNeck(angles.Neck),
		ClassifySpine(angles.Spine),
	), angles
}
