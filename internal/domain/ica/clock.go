package ica

import "time"

// Zona horaria legal de Colombia: UTC-5 fijo, sin horario de verano.
// Las fechas de firma y radicación se anclan siempre a esta zona.
var ColombiaTZ = time.FixedZone("America/Bogota", -5*60*60)

// Clock fuente de tiempo inyectable para que la firma y la radicación sean
// deterministas en pruebas.
type Clock interface {
	Now() time.Time
}

// SystemClock reloj real en hora Colombia.
type SystemClock struct{}

// Now devuelve la hora actual en la zona de Colombia (UTC-5).
func (SystemClock) Now() time.Time {
	return time.Now().In(ColombiaTZ)
}

// FixedClock reloj congelado para pruebas.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
