// Package audit ships ledger history entries to kafka in batches.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yexhin/cookie-customer-service/internal/kafka"
	"github.com/yexhin/cookie-customer-service/internal/ledger"
)

// Pipeline batches history entries and publishes them through a
// producer. Record never blocks the conversation turn: when the input
// buffer is saturated the entry is logged and dropped.
type Pipeline struct {
	workerCount int
	batchSize   int
	timeout     time.Duration
	topic       string

	producer kafka.Producer
	log      *zap.Logger

	inputChan  chan ledger.HistoryEntry
	batchChan  chan []ledger.HistoryEntry
	shutdownCh chan struct{}
	once       sync.Once
	wg         sync.WaitGroup
}

func NewPipeline(producer kafka.Producer, topic string, workerCount, batchSize int, timeout time.Duration, log *zap.Logger) *Pipeline {
	return &Pipeline{
		workerCount: workerCount,
		batchSize:   batchSize,
		timeout:     timeout,
		topic:       topic,
		producer:    producer,
		log:         log,
		inputChan:   make(chan ledger.HistoryEntry, workerCount*batchSize*2),
		batchChan:   make(chan []ledger.HistoryEntry, workerCount*2),
		shutdownCh:  make(chan struct{}),
	}
}

func (p *Pipeline) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.runAggregator(ctx)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
}

// Record implements ledger.AuditSink.
func (p *Pipeline) Record(entry ledger.HistoryEntry) {
	select {
	case p.inputChan <- entry:
	default:
		p.log.Warn("audit buffer full, dropping entry",
			zap.String("action", entry.Action),
			zap.String("order_id", entry.OrderID))
	}
}

// Shutdown flushes the pending batch, waits for the workers to drain
// and closes the producer.
func (p *Pipeline) Shutdown(ctx context.Context) {
	p.once.Do(func() {
		close(p.shutdownCh)

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			p.log.Info("audit pipeline drained")
		case <-ctx.Done():
			p.log.Warn("audit pipeline shutdown interrupted")
		}

		if err := p.producer.Close(); err != nil {
			p.log.Error("failed to close audit producer", zap.Error(err))
		}
	})
}

func (p *Pipeline) runAggregator(ctx context.Context) {
	defer p.wg.Done()

	var (
		batch    []ledger.HistoryEntry
		timer    *time.Timer
		timeoutC <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
		// Drain whatever arrived before shutdown.
		for {
			select {
			case entry := <-p.inputChan:
				batch = append(batch, entry)
			default:
				if len(batch) > 0 {
					p.dispatch(batch)
				}
				close(p.batchChan)
				return
			}
		}
	}()

	for {
		select {
		case entry := <-p.inputChan:
			batch = append(batch, entry)
			if len(batch) >= p.batchSize {
				p.dispatch(batch)
				batch = nil
				timeoutC = nil
			} else if len(batch) == 1 {
				timer = time.NewTimer(p.timeout)
				timeoutC = timer.C
			}

		case <-timeoutC:
			p.dispatch(batch)
			batch = nil
			timeoutC = nil

		case <-ctx.Done():
			return

		case <-p.shutdownCh:
			return
		}
	}
}

func (p *Pipeline) dispatch(batch []ledger.HistoryEntry) {
	batchCopy := make([]ledger.HistoryEntry, len(batch))
	copy(batchCopy, batch)

	select {
	case p.batchChan <- batchCopy:
	default:
		// Workers are behind; publish inline rather than losing the batch.
		p.publish(context.Background(), batchCopy)
	}
}

func (p *Pipeline) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()

	for batch := range p.batchChan {
		sendCtx := ctx
		if ctx.Err() != nil {
			// The run context is cancelled during shutdown; drained
			// batches must still reach the producer.
			sendCtx = context.Background()
		}
		p.publish(sendCtx, batch)
	}
	p.log.Debug("audit worker exiting", zap.Int("worker", id))
}

func (p *Pipeline) publish(ctx context.Context, batch []ledger.HistoryEntry) {
	for _, entry := range batch {
		value, err := json.Marshal(entry)
		if err != nil {
			p.log.Error("failed to marshal audit entry", zap.Error(err))
			continue
		}
		key := []byte(entry.OrderID)
		if len(key) == 0 {
			key = []byte(entry.Action)
		}
		if err := p.producer.SendMessage(ctx, p.topic, key, value); err != nil {
			p.log.Error("failed to publish audit entry",
				zap.String("action", entry.Action),
				zap.Error(err))
		}
	}
}
