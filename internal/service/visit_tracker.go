package service

import (
	"strconv"
	"time"
)

// VisitTracker lee y escribe en sesión los valores del contador de visitas.
type VisitTracker struct{}

// Track evalúa la visita actual y actualiza la sesión. Devuelve el número de
// visitas a mostrar.
func (VisitTracker) Track(s *Session, now time.Time) (int, error) {
	visits, err := ParseStoredVisits(s.Get(SessionKeyVisits, "1"))
	if err != nil {
		return 0, err
	}
	result, err := CountVisit(visits, s.Get(SessionKeyLastVisit, ""), now)
	if err != nil {
		return 0, err
	}
	s.Set(SessionKeyLastVisit, result.LastVisit)
	s.Set(SessionKeyVisits, strconv.Itoa(result.Visits))
	return result.Visits, nil
}
