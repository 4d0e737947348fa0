package entity

import "time"

// Supplier representa un proveedor; los lotes lo referencian de forma opcional.
type Supplier struct {
	ID        string
	Name      string
	Contact   string
	CreatedAt time.Time
}
