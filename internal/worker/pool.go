// Package worker выполняет независимые единицы работы на ограниченном числе горутин.
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/sync/errgroup"
)

// Job описывает единицу работы. Не должна разделять изменяемое состояние с другими заданиями.
type Job func(ctx context.Context) error

// Result содержит итог одного вызова Run
type Result struct {
	Completed int // Задания, которые были запущены и завершились
	Failed    int // Из них — вернувшие ошибку
	Dropped   int // Не запущенные из-за отмены контекста
}

// Pool ограничивает число одновременно выполняемых заданий
type Pool struct {
	size int

	running atomic.Int64
	total   atomic.Uint64
}

// DefaultSize возвращает число логических CPU
func DefaultSize() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// New создаёт пул; size <= 0 означает DefaultSize()
func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize()
	}
	return &Pool{size: size}
}

// Size возвращает максимальное число параллельных заданий
func (p *Pool) Size() int {
	return p.size
}

// Running возвращает число выполняющихся сейчас заданий
func (p *Pool) Running() int {
	return int(p.running.Load())
}

// TotalCompleted возвращает число завершённых заданий за всё время
func (p *Pool) TotalCompleted() uint64 {
	return p.total.Load()
}

// Run выполняет задания и ждёт завершения всех запущенных.
// После отмены ctx ещё не начатые задания отбрасываются, уже запущенные доводятся до конца.
// Ошибка одного задания не отменяет остальные; все ошибки объединяются.
func (p *Pool) Run(ctx context.Context, jobs []Job) (Result, error) {
	var (
		g         errgroup.Group
		completed atomic.Int64
		failed    atomic.Int64
		dropped   atomic.Int64

		errMu sync.Mutex
		errs  []error
	)
	g.SetLimit(p.size)

	for i, job := range jobs {
		if ctx.Err() != nil {
			dropped.Add(int64(len(jobs) - i))
			break
		}

		job := job
		// Go блокируется, пока все слоты заняты
		g.Go(func() error {
			if ctx.Err() != nil {
				dropped.Add(1)
				return nil
			}

			p.running.Add(1)
			err := job(ctx)
			p.running.Add(-1)
			p.total.Add(1)

			completed.Add(1)
			if err != nil {
				failed.Add(1)
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	res := Result{
		Completed: int(completed.Load()),
		Failed:    int(failed.Load()),
		Dropped:   int(dropped.Load()),
	}

	err := errors.Join(errs...)
	if res.Dropped > 0 {
		err = errors.Join(err, ctx.Err())
	}
	return res, err
}
