package orders

import "strings"

type Status string

const (
	StatusPendiente  Status = "Pendiente"
	StatusConfirmada Status = "Confirmada"
	StatusEnviada    Status = "Enviada"
	StatusCompletada Status = "Completada"
	StatusCancelada  Status = "Cancelada"
)

var AllStatuses = []Status{
	StatusPendiente,
	StatusConfirmada,
	StatusEnviada,
	StatusCompletada,
	StatusCancelada,
}

// NormalizeStatus matches input against the five known statuses,
// trimmed and case-insensitive. Any other value is rejected at the
// boundary; business logic only ever sees normalized statuses.
func NormalizeStatus(s string) (Status, bool) {
	t := strings.TrimSpace(s)
	for _, st := range AllStatuses {
		if strings.EqualFold(string(st), t) {
			return st, true
		}
	}
	return "", false
}

// Transitions between non-cancelled statuses are unrestricted and carry
// no stock side effects. Crossing the Cancelada boundary does:
// entering it restocks the order's items, leaving it re-deducts them.
func entersCancelled(from, to Status) bool { return from != StatusCancelada && to == StatusCancelada }
func leavesCancelled(from, to Status) bool { return from == StatusCancelada && to != StatusCancelada }
