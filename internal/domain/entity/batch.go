package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch representa un lote recibido de un producto: misma fecha de vencimiento
// y mismo costo unitario. QuantityReceived es historia inmutable;
// QuantityRemaining es el saldo corriente y solo lo escribe el registrador de
// movimientos. Invariante: 0 <= QuantityRemaining <= QuantityReceived.
// Un lote con movimientos nunca se elimina.
type Batch struct {
	ID                string
	ProductID         string
	BatchNumber       string
	ExpirationDate    time.Time
	QuantityReceived  int64
	QuantityRemaining int64
	UnitCost          decimal.Decimal
	SupplierID        string // vacío si se desconoce el proveedor
	ReceivedAt        time.Time
	Notes             string
	CreatedAt         time.Time
}
