package ports

import (
	"context"

	"github.com/dmorales/farmapos-api/internal/application/dto"
)

// SummaryCache cache del resumen de inventario por lotes (lectura frecuente,
// cálculo costoso). Una implementación nil-safe vive en infrastructure/cache.
type SummaryCache interface {
	GetSummary(ctx context.Context) (*dto.BatchSummaryResponse, bool, error)
	SetSummary(ctx context.Context, summary *dto.BatchSummaryResponse) error
	// InvalidateSummary se invoca tras cada mutación del Batch Ledger.
	InvalidateSummary(ctx context.Context) error
}
