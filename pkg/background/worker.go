package background

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"packagesync/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Task определяет интерфейс для фоновых задач, которые могут выполняться периодически.
type Task interface {
	// TTL возвращает интервал между выполнениями задачи.
	TTL() time.Duration

	// Do выполняет логику задачи.
	Do(context.Context) error

	// Info возвращает читаемое описание задачи для логгирования и отладки.
	Info() string
}

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Option func(*options)

type options struct {
	warmup bool
}

// WithWarmup включает синхронный прогон всех задач до запуска тикеров.
func WithWarmup(enabled bool) Option {
	return func(o *options) {
		o.warmup = enabled
	}
}

// Worker управляет выполнением набора фоновых задач.
type Worker struct {
	log    handlerLogger
	tasks  []Task
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// New создает и запускает Worker для выполнения фоновых задач.
//
// Поведение функции:
//  1. При включенном прогреве (по умолчанию) все задачи сначала выполняются синхронно.
//     Любая ошибка или паника на этом этапе возвращается сразу, Worker не создается.
//  2. Задачи выполняются в фоне до отмены переданного контекста или вызова Stop.
func New(ctx context.Context, log handlerLogger, tasks []Task, opts ...Option) (*Worker, error) {
	o := options{warmup: true}
	for _, opt := range opts {
		opt(&o)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	worker := &Worker{
		log:    log,
		tasks:  tasks,
		cancel: cancel,
	}

	if len(tasks) == 0 {
		return worker, nil
	}

	if o.warmup {
		if err := warmup(workerCtx, log, tasks); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to initialize tasks: %w", err)
		}
	}

	for i := 0; i < len(tasks); i++ {
		task := tasks[i]
		worker.wg.Add(1)
		go func() {
			defer worker.wg.Done()
			worker.runBackgroundTask(workerCtx, task)
		}()
	}

	return worker, nil
}

// Stop останавливает все задачи и дожидается их завершения. Повторный вызов безопасен.
func (w *Worker) Stop() {
	w.once.Do(func() {
		w.cancel()
		w.wg.Wait()
	})
}

func warmup(ctx context.Context, log handlerLogger, tasks []Task) error {
	initGroup, initCtx := errgroup.WithContext(ctx)
	for i := 0; i < len(tasks); i++ {
		task := tasks[i]
		initGroup.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					stack := debug.Stack()
					err = fmt.Errorf("init panic: %v\n%s", r, stack)
					log.Error("Task panic during init",
						logger.NewField("task", task.Info()),
						logger.NewField("recover", r),
						logger.NewField("stack", string(stack)),
					)
				}
			}()
			log.Info("Initializing",
				logger.NewField("task", task.Info()),
			)
			return task.Do(initCtx)
		})
	}
	return initGroup.Wait()
}

func (w *Worker) runBackgroundTask(ctx context.Context, task Task) {
	ttl := task.TTL()
	if ttl <= 0 {
		w.log.Warn("invalid TTL, skipping periodic execution",
			logger.NewField("task", task.Info()),
			logger.NewField("TTL", ttl),
		)
		return
	}
	w.log.Info("Starting periodic execution",
		logger.NewField("task", task.Info()),
		logger.NewField("TTL", ttl),
	)

	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Stopping task (context cancelled)",
				logger.NewField("task", task.Info()),
			)
			return
		case <-ticker.C:
			w.executeTaskSafely(ctx, task)
		}
	}
}

func (w *Worker) executeTaskSafely(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()

			w.log.Error("Background task panic",
				logger.NewField("task", task.Info()),
				logger.NewField("recover", r),
				logger.NewField("stack", string(stack)),
			)
		}
	}()

	if err := task.Do(ctx); err != nil {
		w.log.Error("Background task failed",
			logger.NewField("task", task.Info()),
			logger.NewField("error", err),
		)
	}
}
