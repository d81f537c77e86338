package input

import (
	"context"

	"macros/internal/domain/entities"
)

type CheckUseCase interface {
	CheckTable(ctx context.Context) []entities.Finding
	CheckCallSites(ctx context.Context) ([]entities.Finding, int, error)
	Run(ctx context.Context) (*entities.Report, error)
}
