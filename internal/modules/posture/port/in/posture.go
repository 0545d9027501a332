package in

import (
	"context"

	"posturetrack/internal/modules/posture/dto"
)

type Usecase interface {
	Ingest(ctx context.Context, update dto.PostureUpdate) (dto.IngestOutput, error)
	Recent(ctx context.Context, limit int) ([]dto.RecordOutput, error)
	Latest(ctx context.Context) (dto.RecordOutput, error)
}
