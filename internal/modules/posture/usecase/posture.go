package usecase

import (
	"context"
	"fmt"
	"time"

	"posturetrack/internal/modules/posture/domain"
	"posturetrack/internal/modules/posture/dto"
	posturein "posturetrack/internal/modules/posture/port/in"
	"posturetrack/internal/modules/posture/service"
	apperrors "posturetrack/internal/platform/errors"
)

type Interactor struct {
	svc *service.TrackerService
}

func NewInteractor(svc *service.TrackerService) posturein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Ingest(ctx context.Context, update dto.PostureUpdate) (dto.IngestOutput, error) {
	ts, err := parseTimestamp(update.Timestamp)
	if err != nil {
		return dto.IngestOutput{}, err
	}

	if len(update.Landmarks) > 0 {
		frame := make(domain.Frame, len(update.Landmarks))
		for _, lm := range update.Landmarks {
			frame[domain.LandmarkID(lm.ID)] = domain.Point{X: lm.X, Y: lm.Y, Z: lm.Z}
		}
		rec, angles, err := i.svc.IngestFrame(ctx, frame, ts)
		if err != nil {
			return dto.IngestOutput{}, err
		}
		return dto.IngestOutput{
			Record: toRecordOutput(rec),
			Wrist:  angles.Wrist,
			Neck:   angles.Neck,
			Spine:  angles.Spine,
		}, nil
	}

	status := domain.Status(update.Status)
	if err := status.Validate(); err != nil {
		return dto.IngestOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	rec, err := i.svc.IngestStatus(ctx, status, ts)
	if err != nil {
		return dto.IngestOutput{}, err
	}
	return dto.IngestOutput{Record: toRecordOutput(rec)}, nil
}

func (i *Interactor) Recent(ctx context.Context, limit int) ([]dto.RecordOutput, error) {
	records, err := i.svc.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecordOutput, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordOutput(rec))
	}
	return out, nil
}

func (i *Interactor) Latest(ctx context.Context) (dto.RecordOutput, error) {
	rec, err := i.svc.Latest(ctx)
	if err != nil {
		return dto.RecordOutput{}, err
	}
	return toRecordOutput(rec), nil
}

// parseTimestamp accepts RFC 3339 with or without fractional seconds; an
// empty value defers to the server clock.
func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp %q", apperrors.ErrInvalidInput, raw)
	}
	return ts.UTC(), nil
}

func toRecordOutput(rec domain.Record) dto.RecordOutput {
	return dto.RecordOutput{
		ID:        rec.ID,
		Status:    string(rec.Status),
		Timestamp: rec.Timestamp.Format(time.RFC3339Nano),
	}
}
