package pkg

import (
	"sync"
	"time"

	"bunny-media-api/models"

	"github.com/sirupsen/logrus"
)

// ReconcileFunc reconcilia una sesión de video contra el proveedor y devuelve
// el estado local resultante. Debe ser idempotente: reconciliar un video ya
// terminal no cambia nada.
type ReconcileFunc func(videoID string) (string, error)

// StatusPoller consulta periódicamente el estado de un video hasta que llega
// a un estado terminal (ready o failed) o hasta que se le pare. Los errores
// de una reconciliación concreta se registran y no detienen el bucle: la
// siguiente vuelta lo vuelve a intentar.
type StatusPoller struct {
	interval  time.Duration
	reconcile ReconcileFunc

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewStatusPoller(interval time.Duration, reconcile ReconcileFunc) *StatusPoller {
	return &StatusPoller{
		interval:  interval,
		reconcile: reconcile,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Run ejecuta el bucle de sondeo para un video. Bloquea hasta estado terminal
// o Stop; pensado para lanzarse con `go poller.Run(id)`.
func (p *StatusPoller) Run(videoID string) {
	defer close(p.done)

	// Primera reconciliación inmediata: si el video ya es terminal no hay
	// nada que sondear
	if p.reconcileOnce(videoID) {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			if p.reconcileOnce(videoID) {
				return
			}
		}
	}
}

// reconcileOnce ejecuta una reconciliación y devuelve true si el video ha
// llegado a un estado terminal
func (p *StatusPoller) reconcileOnce(videoID string) bool {
	status, err := p.reconcile(videoID)
	if err != nil {
		logrus.WithError(err).WithField("videoId", videoID).Warn("Error reconciliando el estado del video")
		return false
	}
	if status == models.StatusReady || status == models.StatusFailed {
		logrus.WithFields(logrus.Fields{
			"videoId": videoID,
			"status":  status,
		}).Info("El video ha llegado a un estado terminal, se detiene el sondeo")
		return true
	}
	return false
}

// Stop detiene el bucle de sondeo. Es seguro llamarlo varias veces.
func (p *StatusPoller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
}

// Done se cierra cuando el bucle de sondeo ha terminado
func (p *StatusPoller) Done() <-chan struct{} {
	return p.done
}
