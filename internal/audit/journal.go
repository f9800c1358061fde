package audit

/*
Журнал политик: асинхронная запись переходов жизненного цикла, переговоров
и доставки уведомлений в PostgreSQL.

- Record не блокирует диспетчер: запись уходит в буферизованный канал,
  при переполнении запись сбрасывается с ошибкой в лог.
- Воркер пишет пачками по batchSize записей или по тикеру.
- Stop закрывает канал и ждёт финальный flush.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	bufferSize    = 10000
	batchSize     = 100
	flushInterval = 500 * time.Millisecond
)

// Storage определяет, куда физически сохраняются записи
type Storage interface {
	// WriteBatch сохраняет пачку записей за один раз
	WriteBatch(ctx context.Context, entries []Entry) error
}

type Recorder interface {
	Record(entry Entry)
}

type Journal struct {
	ch     chan Entry
	repo   Storage
	fill   prometheus.Gauge // может быть nil
	logger *zap.Logger
	wg     sync.WaitGroup

	closed atomic.Bool
	mu     sync.RWMutex // Record держит RLock, Stop берёт Lock перед close(ch)
}

func NewJournal(repo Storage, fill prometheus.Gauge, logger *zap.Logger) *Journal {
	return &Journal{
		ch:     make(chan Entry, bufferSize),
		repo:   repo,
		fill:   fill,
		logger: logger.With(zap.String("mod", "journal")),
	}
}

func (j *Journal) Start() {
	j.wg.Add(1)
	go j.worker()
}

// Stop запирает вход и ждёт, пока воркер всё допишет.
func (j *Journal) Stop() {
	j.mu.Lock()
	if j.closed.Swap(true) {
		j.mu.Unlock()
		return
	}
	j.logger.Info("stopping journal: closing channel and flushing buffer...")
	close(j.ch)
	j.mu.Unlock()

	j.wg.Wait()
	j.logger.Info("journal stopped gracefully")
}

func (j *Journal) Record(entry Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed.Load() {
		j.logger.Warn("journal entry dropped: journal is stopping", zap.String("id", entry.ID))
		return
	}

	// Load shedding: диспетчер не ждёт базу
	select {
	case j.ch <- entry:
		if j.fill != nil {
			j.fill.Set(float64(len(j.ch)))
		}
	default:
		j.logger.Error("journal_buffer_overflow",
			zap.String("policy", entry.Policy),
			zap.String("action", entry.Action),
		)
	}
}

func (j *Journal) worker() {
	defer j.wg.Done()

	batch := make([]Entry, 0, batchSize)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Background: основной контекст к этому моменту может быть закрыт
		if err := j.repo.WriteBatch(context.Background(), batch); err != nil {
			j.logger.Error("journal flush failed", zap.Int("entries", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
		if j.fill != nil {
			j.fill.Set(float64(len(j.ch)))
		}
	}

	for {
		select {
		case entry, ok := <-j.ch:
			if !ok {
				// Канал закрыт в Stop: остатки уже вычитаны, финальный сброс
				flush()
				j.logger.Info("journal worker finished")
				return
			}
			batch = append(batch, entry)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
