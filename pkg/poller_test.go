package pkg

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"bunny-media-api/models"

	"github.com/stretchr/testify/assert"
)

func esperarFin(t *testing.T, poller *StatusPoller) {
	select {
	case <-poller.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("El poller no ha terminado a tiempo")
	}
}

// El sondeo se detiene solo cuando el video llega a un estado terminal
func TestPollerSeDetieneEnEstadoTerminal(t *testing.T) {
	var llamadas int32

	poller := NewStatusPoller(5*time.Millisecond, func(videoID string) (string, error) {
		n := atomic.AddInt32(&llamadas, 1)
		if n < 3 {
			return models.StatusProcessing, nil
		}
		return models.StatusReady, nil
	})

	go poller.Run("local-1")
	esperarFin(t, poller)

	assert.Equal(t, int32(3), atomic.LoadInt32(&llamadas))
}

func TestPollerSeDetieneConFailed(t *testing.T) {
	poller := NewStatusPoller(5*time.Millisecond, func(videoID string) (string, error) {
		return models.StatusFailed, nil
	})

	go poller.Run("local-1")
	esperarFin(t, poller)
}

/// Un error de reconciliación no detiene el bucle: la siguiente vuelta vuelve
// a intentarlo
func TestPollerSigueTrasErrores(t *testing.T) {
	var llamadas int32

	poller := NewStatusPoller(5*time.Millisecond, func(videoID string) (string, error) {
		n := atomic.AddInt32(&llamadas, 1)
		if n < 3 {
			return "", errors.New("el proveedor no responde")
		}
		return models.StatusReady, nil
	})

	go poller.Run("local-1")
	esperarFin(t, poller)

	assert.GreaterOrEqual(t, atomic.LoadInt32(&llamadas), int32(3))
}

// Stop corta el sondeo aunque el video siga sin estado terminal
func TestPollerStop(t *testing.T) {
	poller := NewStatusPoller(5*time.Millisecond, func(videoID string) (string, error) {
		return models.StatusProcessing, nil
	})

	go poller.Run("local-1")
	time.Sleep(20 * time.Millisecond)

	poller.Stop()
	poller.Stop() // llamarlo dos veces es seguro
	esperarFin(t, poller)
}
