package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/osinthq/intake/app/cfg"
	"github.com/osinthq/intake/app/database"
	"github.com/osinthq/intake/app/registry"
	"github.com/osinthq/intake/app/sources"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	upstreams   []sources.Upstream
	registry    *registry.Registry
	sourceRepo  database.SourceRepository
	itemRepo    database.ItemRepository
	httpClient  *http.Client
	userAgent   string
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(upstreams []sources.Upstream, reg *registry.Registry,
	sourceRepo database.SourceRepository, itemRepo database.ItemRepository,
	httpClient *http.Client) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	config := cfg.Get()

	return &Scheduler{
		upstreams:   upstreams,
		registry:    reg,
		sourceRepo:  sourceRepo,
		itemRepo:    itemRepo,
		httpClient:  httpClient,
		userAgent:   config.UserAgent,
		interval:    time.Duration(config.SchedulerInterval) * time.Second,
		workerCount: config.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// EnqueueRefresh queues an immediate processing run for one plugin,
// used by the API's refresh endpoint.
func (s *Scheduler) EnqueueRefresh(pluginID string) error {
	for _, upstream := range s.upstreams {
		if upstream.PluginID == pluginID {
			task := NewProcessSourceTask(upstream, s.httpClient, s.registry, s.sourceRepo, s.itemRepo, s.userAgent)
			return s.EnqueueTask(task)
		}
	}
	return fmt.Errorf("unknown plugin: %s", pluginID)
}

func (s *Scheduler) enqueueStartupTasks() {
	if len(s.upstreams) == 0 {
		slog.Debug("No upstream sources configured")
		return
	}

	slog.Debug("Processing upstream sources", "count", len(s.upstreams))

	for _, upstream := range s.upstreams {
		task := NewProcessSourceTask(upstream, s.httpClient, s.registry, s.sourceRepo, s.itemRepo, s.userAgent)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue ProcessSourceTask", "plugin", upstream.PluginID, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	for _, upstream := range s.upstreams {
		source, err := s.sourceRepo.GetSource(upstream.PluginID)
		if err != nil {
			slog.Warn("Failed to get source from database, skipping", "plugin", upstream.PluginID, "error", err)
			continue
		}
		if source == nil {
			slog.Warn("Source not registered in database, skipping", "plugin", upstream.PluginID)
			continue
		}

		now := time.Now().UTC()
		if source.NextFetchAt != nil && source.NextFetchAt.After(now) {
			slog.Debug("Source not due for refresh yet", "plugin", upstream.PluginID, "next_fetch_at", source.NextFetchAt)
		} else {
			task := NewProcessSourceTask(upstream, s.httpClient, s.registry, s.sourceRepo, s.itemRepo, s.userAgent)
			if err := s.EnqueueTask(task); err != nil {
				slog.Warn("Failed to enqueue ProcessSourceTask", "plugin", upstream.PluginID, "error", err)
			}
		}

		if upstream.ExtractContent {
			extractTask := NewExtractContentTask(upstream, s.httpClient, s.itemRepo, s.userAgent)
			if err := s.EnqueueTask(extractTask); err != nil {
				slog.Warn("Failed to enqueue ExtractContentTask", "plugin", upstream.PluginID, "error", err)
			}
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "plugin", task.GetPluginID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
