package inventory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dmorales/farmapos-api/internal/application/dto"
	"github.com/dmorales/farmapos-api/internal/domain/repository"
)

// ConsistencyUseCase verifica que el Stock Ledger coincida con la suma de
// quantity_remaining de los lotes de cada producto con seguimiento.
// Solo reporta: nunca corrige saldos por su cuenta.
type ConsistencyUseCase struct {
	reportRepo repository.ReportRepository
	log        zerolog.Logger
}

func NewConsistencyUseCase(reportRepo repository.ReportRepository, log zerolog.Logger) *ConsistencyUseCase {
	return &ConsistencyUseCase{reportRepo: reportRepo, log: log}
}

// CheckConsistency devuelve los productos divergentes y deja constancia en el
// log con nivel warn por cada uno (error si hay alguno, info si no).
func (uc *ConsistencyUseCase) CheckConsistency(ctx context.Context) ([]dto.StockDivergenceDTO, error) {
	divergences, err := uc.reportRepo.GetStockDivergences(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.StockDivergenceDTO, 0, len(divergences))
	for _, d := range divergences {
		out = append(out, dto.StockDivergenceDTO{
			ProductID:      d.ProductID,
			ProductName:    d.ProductName,
			StockLevel:     d.StockLevel,
			BatchRemaining: d.BatchRemaining,
			Difference:     d.StockLevel - d.BatchRemaining,
		})
		uc.log.Warn().
			Str("product_id", d.ProductID).
			Str("product_name", d.ProductName).
			Int64("stock_level", d.StockLevel).
			Int64("batch_remaining", d.BatchRemaining).
			Int64("difference", d.StockLevel-d.BatchRemaining).
			Msg("divergencia stock agregado vs lotes")
	}

	if len(out) > 0 {
		uc.log.Error().Int("products", len(out)).Msg("verificación de consistencia con divergencias")
	} else {
		uc.log.Info().Msg("verificación de consistencia sin divergencias")
	}
	return out, nil
}
