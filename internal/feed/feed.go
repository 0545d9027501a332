// Package feed generates a synthetic posture landmark stream for exercising
// a running server without a camera or pose estimator attached.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"posturetrack/internal/modules/posture/domain"
	"posturetrack/internal/modules/posture/dto"
	"posturetrack/internal/platform/telemetry"
)

// Options controls the synthetic producer.
type Options struct {
	URL      string
	Interval time.Duration
	// Every sends only one frame out of Every captured frames; a status
	// change always goes out regardless. Zero or one means every frame.
	Every int
	// Count stops after this many captured frames; zero runs until the
	// context is cancelled.
	Count int
}

type ack struct {
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Run connects as the producer and streams generated frames until the
// context is cancelled or Count frames have been captured.
func Run(ctx context.Context, opts Options) error {
	if opts.Interval <= 0 {
		opts.Interval = 500 * time.Millisecond
	}
	if opts.Every < 1 {
		opts.Every = 1
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, opts.URL, nil)
	if err != nil {
		return fmt.Errorf("dial feed endpoint: %w", err)
	}
	defer conn.Close()

	logger := telemetry.GetLogger()
	logger.Info("feed connected", "url", opts.URL, "interval", opts.Interval.String(), "every", opts.Every)

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	captured := 0
	var lastSent domain.Status
	for {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(time.Second)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return nil
		case <-ticker.C:
		}

		frame := frameForTick(captured)
		status, _ := domain.Classify(frame)
		captured++
		// Sampled frames still go out immediately when the status flips.
		if (captured-1)%opts.Every != 0 && status == lastSent {
			if opts.Count > 0 && captured >= opts.Count {
				return nil
			}
			continue
		}
		lastSent = status

		update := dto.PostureUpdate{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Landmarks: toLandmarkPoints(frame),
		}
		if err := conn.WriteJSON(update); err != nil {
			return fmt.Errorf("send frame: %w", err)
		}

		var reply ack
		if err := readAck(conn, &reply); err != nil {
			return err
		}
		if reply.Error != "" {
			logger.Warn("frame rejected", "error", reply.Error)
		} else {
			logger.Info("frame accepted", "frame", captured)
		}

		if opts.Count > 0 && captured >= opts.Count {
			return nil
		}
	}
}

func readAck(conn *websocket.Conn, reply *ack) error {
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read ack: %w", err)
	}
	if err := json.Unmarshal(data, reply); err != nil {
		return fmt.Errorf("decode ack: %w", err)
	}
	return nil
}

// frameForTick alternates between phases of a sit-stretch-slump cycle so a
// watching dashboard sees all three statuses.
func frameForTick(tick int) domain.Frame {
	switch (tick / 6) % 3 {
	case 0:
		return typingFrame()
	case 1:
		return slumpedFrame()
	default:
		return forwardLeanFrame()
	}
}

// typingFrame is a seated subject with a tilted torso, open wrists, and the
// head over the shoulders. Classifies good on all three metrics.
func typingFrame() domain.Frame {
	return domain.Frame{
		domain.Nose:          {X: 0.58, Y: 0.10},
		domain.LeftShoulder:  {X: 0.48, Y: 0.30},
		domain.RightShoulder: {X: 0.68, Y: 0.30},
		domain.LeftElbow:     {X: 0.38, Y: 0.50},
		domain.RightElbow:    {X: 0.78, Y: 0.50},
		domain.LeftWrist:     {X: 0.30, Y: 0.62},
		domain.RightWrist:    {X: 0.86, Y: 0.62},
		domain.LeftPinky:     {X: 0.24, Y: 0.71},
		domain.RightPinky:    {X: 0.92, Y: 0.71},
		domain.LeftIndex:     {X: 0.24, Y: 0.71},
		domain.RightIndex:    {X: 0.92, Y: 0.71},
		domain.LeftHip:       {X: 0.40, Y: 0.80},
		domain.RightHip:      {X: 0.60, Y: 0.80},
	}
}

// slumpedFrame pushes the head far forward of the shoulder line so the neck
// metric exceeds its bad threshold.
func slumpedFrame() domain.Frame {
	frame := typingFrame()
	frame[domain.Nose] = domain.Point{X: 0.95, Y: 0.32}
	return frame
}

// forwardLeanFrame moves the head moderately forward: the neck angle lands
// between the good and bad cut-offs.
func forwardLeanFrame() domain.Frame {
	frame := typingFrame()
	frame[domain.Nose] = domain.Point{X: 0.76, Y: 0.10}
	return frame
}

func toLandmarkPoints(frame domain.Frame) []dto.LandmarkPoint {
	points := make([]dto.LandmarkPoint, 0, len(frame))
	for id, p := range frame {
		points = append(points, dto.LandmarkPoint{ID: int(id), X: p.X, Y: p.Y, Z: p.Z})
	}
	return points
}
