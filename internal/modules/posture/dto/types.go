package dto

// PostureUpdate is one inbound producer message. Either Landmarks carries a
// full detection frame for server-side classification, or Status carries a
// pre-computed value from a client that classifies locally.
type PostureUpdate struct {
	Status    string          `json:"status,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Landmarks []LandmarkPoint `json:"landmarks,omitempty"`
}

// LandmarkPoint is a single 3-D landmark in normalized image coordinates,
// keyed by its MediaPipe pose index.
type LandmarkPoint struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

type RecordOutput struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// IngestOutput echoes what was persisted plus the derived angles when the
// classification ran server-side.
type IngestOutput struct {
	Record RecordOutput
	Wrist  float64
	Neck   float64
	Spine  float64
}
