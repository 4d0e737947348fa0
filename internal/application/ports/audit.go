package ports

import "context"

// AuditEvent evento de auditoría de mutaciones del motor (ventas y movimientos).
type AuditEvent struct {
	ActorID    string
	Action     string // create, update, delete, allocate, movement
	Resource   string // sale, batch, stock_movement
	ResourceID string
	Detail     map[string]any
}

// AuditLogger sumidero de auditoría: el motor lo invoca, nunca lo posee.
// Las implementaciones no deben fallar la operación de negocio.
type AuditLogger interface {
	Log(ctx context.Context, event AuditEvent)
}

// NopAuditLogger descarta los eventos; útil en tests.
type NopAuditLogger struct{}

func (NopAuditLogger) Log(context.Context, AuditEvent) {}
