package entity

import "time"

// Client representa un cliente del directorio. El motor de ventas solo
// verifica su existencia; el CRUD completo vive fuera del núcleo.
type Client struct {
	ID        string
	Name      string
	Contact   string
	CreatedAt time.Time
}
