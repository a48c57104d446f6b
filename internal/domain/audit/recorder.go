package audit

import (
	"context"
	"strings"
	"sync"
	"time"

	"disercomi-tramites/internal/platform/logger"

	"github.com/google/uuid"
)

// Recorder escribe entradas de bitácora fuera del camino crítico: Record
// encola y retorna de inmediato; un worker persiste en segundo plano. Un
// fallo del sink nunca llega al caller, solo al log operacional.
type Recorder struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time

	ch   chan Entry
	wg   sync.WaitGroup
	once sync.Once
}

const defaultBuffer = 256

// writeTimeout acota la escritura de cada entrada para que un sink colgado
// no detenga el drenaje del canal.
const writeTimeout = 5 * time.Second

func NewRecorder(repo Repository, log logger.Logger) *Recorder {
	r := &Recorder{
		repo: repo,
		log:  log,
		now:  time.Now,
		ch:   make(chan Entry, defaultBuffer),
	}

	r.wg.Add(1)
	go r.drain()

	return r
}

// Record encola una entrada. Completa ID y Timestamp si vienen vacíos. Si el
// buffer está lleno, la entrada se descarta y se reporta por log; la operación
// principal jamás se bloquea ni falla por la bitácora.
func (r *Recorder) Record(e Entry) {
	if strings.TrimSpace(e.ID) == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.now()
	}
	if e.ActionType == "" {
		e.ActionType = ActionOther
	}

	select {
	case r.ch <- e:
	default:
		r.log.Warn("audit buffer full, entry dropped", map[string]any{
			"action":   string(e.ActionType),
			"resource": e.ResourceType,
		})
	}
}

// Close deja de aceptar entradas y espera a que el worker drene lo pendiente.
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.ch)
	})
	r.wg.Wait()
}

func (r *Recorder) drain() {
	defer r.wg.Done()

	for e := range r.ch {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := r.repo.Append(ctx, e); err != nil {
			r.log.Error("audit append failed", map[string]any{
				"error":    err.Error(),
				"action":   string(e.ActionType),
				"resource": e.ResourceType,
			})
		}
		cancel()
	}
}
