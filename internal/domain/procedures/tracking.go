package procedures

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

// trackingPrefix identifica al sistema emisor en el código público.
const trackingPrefix = "DIS"

const trackingAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateTrackingCode produce un código público corto y legible, distinto del
// id interno: DIS-<timestamp ms en base36>-<3 caracteres aleatorios>.
// La unicidad viene de combinar el reloj en milisegundos con el sufijo
// aleatorio; la generación nunca falla, el repositorio verifica colisiones.
func GenerateTrackingCode() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)

	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	suffix := make([]byte, 3)
	for i, b := range buf {
		suffix[i] = trackingAlphabet[int(b)%len(trackingAlphabet)]
	}

	return trackingPrefix + "-" + strings.ToUpper(ts) + "-" + string(suffix)
}
