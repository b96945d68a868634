package background

import (
	"context"
	"log"
	"sync"
	"time"

	"campuseats/internal/caching"
	"campuseats/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// emptyOrderGrace is how old an order header must be before the
// reconciler treats its missing items as permanent rather than a write
// still in flight.
const emptyOrderGrace = 10 * time.Minute

// JobScheduler manages background jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	orderSvc  services.OrderServiceInterface
	cacheSvc  caching.CacheService
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(orderSvc services.OrderServiceInterface, cacheSvc caching.CacheService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		orderSvc:  orderSvc,
		cacheSvc:  cacheSvc,
		jobs:      make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// Empty-order reconciliation - every 15 minutes
	reconcileJob, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.reconcileEmptyOrders, context.Background()),
		gocron.WithName("empty-order-reconciliation"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create reconciliation job: %v", err)
	} else {
		js.jobs["empty-order-reconciliation"] = reconcileJob
	}

	// Cache cleanup - every hour
	cacheJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.cleanupExpiredCache),
		gocron.WithName("cache-cleanup"),
	)
	if err != nil {
		log.Printf("Failed to create cache cleanup job: %v", err)
	} else {
		js.jobs["cache-cleanup"] = cacheJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// reconcileEmptyOrders deletes order headers whose item writes never
// landed. The checkout path writes header and items in one transaction,
// so anything this job finds came from an older writer or a manual edit.
func (js *JobScheduler) reconcileEmptyOrders(ctx context.Context) error {
	log.Printf("Starting empty-order reconciliation")

	removed, err := js.orderSvc.ReconcileEmptyOrders(ctx, emptyOrderGrace)
	if err != nil {
		log.Printf("Empty-order reconciliation failed: %v", err)
		return err
	}

	log.Printf("Empty-order reconciliation removed %d headers", removed)
	return nil
}

// cleanupExpiredCache performs cleanup of expired cache entries
func (js *JobScheduler) cleanupExpiredCache() error {
	log.Printf("Starting cache cleanup")

	// Redis expires keys on its own; this exists for patterns without a
	// TTL, currently none.
	log.Printf("Cache cleanup completed")

	return nil
}

// AddJob adds a custom job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	js.jobs[name] = job
	log.Printf("Added custom job: %s", name)
	return nil
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobs, name)
		return err
	}

	return nil
}
