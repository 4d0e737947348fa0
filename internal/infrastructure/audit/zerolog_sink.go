package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dmorales/farmapos-api/internal/application/ports"
)

var _ ports.AuditLogger = (*ZerologSink)(nil)

// ZerologSink escribe los eventos de auditoría como entradas estructuradas
// del log de la aplicación. Nunca falla la operación de negocio.
type ZerologSink struct {
	log zerolog.Logger
}

func NewZerologSink(log zerolog.Logger) *ZerologSink {
	return &ZerologSink{log: log.With().Str("component", "audit").Logger()}
}

func (s *ZerologSink) Log(_ context.Context, event ports.AuditEvent) {
	e := s.log.Info().
		Str("actor_id", event.ActorID).
		Str("action", event.Action).
		Str("resource", event.Resource).
		Str("resource_id", event.ResourceID)
	if len(event.Detail) > 0 {
		e = e.Interface("detail", event.Detail)
	}
	e.Msg("audit")
}
