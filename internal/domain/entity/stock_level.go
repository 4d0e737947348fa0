package entity

import "time"

// StockLevel es el saldo agregado de stock por producto (Stock Ledger).
// Una fila por producto, creada de forma perezosa en el primer evento de stock.
// La cantidad nunca es negativa; solo el motor la muta.
type StockLevel struct {
	ProductID string
	Quantity  int64
	UpdatedAt time.Time
}
