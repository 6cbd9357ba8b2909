package cycle

import (
	"fmt"
	"time"
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// DefaultName is "Ciclo <month> de <year>" with the Spanish month name,
// e.g. "Ciclo enero de 2025".
func DefaultName(t time.Time) string {
	return fmt.Sprintf("Ciclo %s de %d", monthNames[t.Month()-1], t.Year())
}
