package service

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// VisitTimeLayout es el formato con el que se guarda last_visit en sesión.
	VisitTimeLayout = "2006-01-02 15:04:05.000000"

	visitParseLayout = "2006-01-02 15:04:05"
	// Sufijo de ancho fijo (".ffffff") que se descarta antes de parsear.
	visitSuffixLen = 7
)

// ParseError indica un valor de sesión que no se pudo interpretar.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse session %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// VisitCount es el resultado de evaluar una visita.
type VisitCount struct {
	Visits    int
	LastVisit string
}

// FormatVisitTime serializa un instante tal como se guarda en sesión.
func FormatVisitTime(t time.Time) string {
	return t.Format(VisitTimeLayout)
}

// CountVisit aplica la política del contador de visitas. storedVisits <= 0 y
// storedLastVisit vacío se tratan como ausentes. No tiene efectos laterales:
// el llamador persiste el resultado en la sesión.
//
// Si pasó menos de un día completo desde la última visita el contador vuelve
// a 1 y last_visit se conserva tal cual.
func CountVisit(storedVisits int, storedLastVisit string, now time.Time) (VisitCount, error) {
	visits := storedVisits
	if visits <= 0 {
		visits = 1
	}
	lastVisit := storedLastVisit
	if lastVisit == "" {
		lastVisit = FormatVisitTime(now)
	}

	lastVisitTime, err := parseVisitTime(lastVisit, now.Location())
	if err != nil {
		return VisitCount{}, err
	}

	if wholeDays(now.Sub(lastVisitTime)) > 0 {
		return VisitCount{Visits: visits + 1, LastVisit: FormatVisitTime(now)}, nil
	}
	return VisitCount{Visits: 1, LastVisit: lastVisit}, nil
}

// ParseStoredVisits interpreta el valor "visits" leído de la sesión.
func ParseStoredVisits(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ParseError{Field: "visits", Value: raw, Err: err}
	}
	return n, nil
}

func parseVisitTime(raw string, loc *time.Location) (time.Time, error) {
	if len(raw) <= visitSuffixLen {
		return time.Time{}, &ParseError{Field: "last_visit", Value: raw, Err: fmt.Errorf("value too short")}
	}
	t, err := time.ParseInLocation(visitParseLayout, raw[:len(raw)-visitSuffixLen], loc)
	if err != nil {
		return time.Time{}, &ParseError{Field: "last_visit", Value: raw, Err: err}
	}
	return t, nil
}

// wholeDays redondea hacia abajo, igual para diferencias negativas.
func wholeDays(d time.Duration) int {
	const day = 24 * time.Hour
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	return days
}
