package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aquario/identity-service/internal/core/ports"
	"github.com/aquario/identity-service/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

type jobKind int

const (
	jobHash jobKind = iota
	jobCompare
)

type job struct {
	ctx      context.Context
	kind     jobKind
	hash     string
	password string
	result   chan jobResult
}

type jobResult struct {
	hash string
	err  error
}

// HashPool runs password hashing on a fixed set of workers so a burst of
// registrations or logins cannot occupy every CPU with bcrypt. It satisfies
// ports.PasswordHasher by delegating to the wrapped hasher.
type HashPool struct {
	hasher ports.PasswordHasher
	jobs   chan job
	size   int
	log    zerolog.Logger
}

// NewHashPool creates a pool with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewHashPool(numWorkers int, hasher ports.PasswordHasher, log zerolog.Logger) *HashPool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &HashPool{
		hasher: hasher,
		jobs:   make(chan job, channelBuffer),
		size:   numWorkers,
		log:    log,
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (p *HashPool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		go p.runWorker(ctx, i)
	}
}

func (p *HashPool) Hash(ctx context.Context, password string) (string, error) {
	res, err := p.submit(ctx, job{kind: jobHash, password: password})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

func (p *HashPool) Compare(ctx context.Context, hash, password string) error {
	res, err := p.submit(ctx, job{kind: jobCompare, hash: hash, password: password})
	if err != nil {
		return err
	}
	return res.err
}

// submit enqueues j and waits for its result. Both steps give up when ctx
// is done; a job already running is allowed to finish.
func (p *HashPool) submit(ctx context.Context, j job) (jobResult, error) {
	j.ctx = ctx
	j.result = make(chan jobResult, 1)

	select {
	case p.jobs <- j:
		metrics.HashQueueDepth.Inc()
	case <-ctx.Done():
		return jobResult{}, ctx.Err()
	}

	select {
	case res := <-j.result:
		return res, nil
	case <-ctx.Done():
		return jobResult{}, ctx.Err()
	}
}

func (p *HashPool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			metrics.HashQueueDepth.Dec()
			j.result <- p.run(j, id)
		}
	}
}

func (p *HashPool) run(j job, workerID int) jobResult {
	if err := j.ctx.Err(); err != nil {
		return jobResult{err: err}
	}

	start := time.Now()
	var res jobResult
	op := "hash"
	switch j.kind {
	case jobHash:
		res.hash, res.err = p.hasher.Hash(j.ctx, j.password)
	case jobCompare:
		op = "compare"
		res.err = p.hasher.Compare(j.ctx, j.hash, j.password)
	}
	elapsed := time.Since(start)
	metrics.PasswordHashDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	p.log.Debug().
		Str("op", op).
		Int("worker_id", workerID).
		Dur("elapsed", elapsed).
		Msg("password job done")

	return res
}
