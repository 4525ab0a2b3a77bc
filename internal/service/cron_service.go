package service

import (
	"context"
	"time"

	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"github.com/robfig/cron/v3"
)

// CronService owns the background jobs of the process
type CronService struct {
	c              *cron.Cron
	adminLimiter   *RateLimiter
	loginLimiter   *RateLimiter
	contactLimiter *RateLimiter
}

// NewCronService creates a new CronService. Nil limiters are skipped.
func NewCronService(adminLimiter, loginLimiter, contactLimiter *RateLimiter) *CronService {
	return &CronService{
		c:              cron.New(),
		adminLimiter:   adminLimiter,
		loginLimiter:   loginLimiter,
		contactLimiter: contactLimiter,
	}
}

// Start queues the scheduled jobs and starts the scheduler
func (cs *CronService) Start() {
	zaplogger.Info("Initializing CronService")

	// ------------------------------------------------------------
	// Add your SCHEDULED jobs here
	// ------------------------------------------------------------
	cs.addScheduledJob("Admin RateLimit SWEEP Job", cs.adminSweepJob, "@every 10m")
	cs.addScheduledJob("Login RateLimit SWEEP Job", cs.loginSweepJob, "@every 10m")
	cs.addScheduledJob("Contact RateLimit SWEEP Job", cs.contactSweepJob, "@every 5m")
	// ------------------------------------------------------------

	cs.c.Start()
}

// Stop stops the scheduler and waits for running jobs until ctx is done
func (cs *CronService) Stop(ctx context.Context) {
	done := cs.c.Stop()
	select {
	case <-done.Done():
		zaplogger.Info("CronService stopped")
	case <-ctx.Done():
		zaplogger.Warn("CronService stop timed out")
	}
}

// Entries returns the number of scheduled jobs
func (cs *CronService) Entries() int {
	return len(cs.c.Entries())
}

func (cs *CronService) addScheduledJob(name string, job func(), schedule string) {
	_, err := cs.c.AddFunc(schedule, timedJob(name, job))
	if err != nil {
		zaplogger.Error("FAILED TO QUEUE SCHEDULED JOB", zaplogger.Fields{
			"job":   name,
			"error": err.Error(),
		})
		return
	}
	zaplogger.Info("QUEUED SCHEDULED job", zaplogger.Fields{
		"job": name,
	})
}

// timedJob wraps job with start and completion logs and its run time
func timedJob(name string, job func()) func() {
	return func() {
		defer zaplogger.TimeTrack(time.Now(), name)
		zaplogger.Debug("STARTED SCHEDULED JOB", zaplogger.Fields{
			"job": name,
		})
		job()
		zaplogger.Debug("COMPLETED SCHEDULED JOB", zaplogger.Fields{
			"job": name,
		})
	}
}

func (cs *CronService) adminSweepJob() {
	cs.sweep("Admin RateLimit SWEEP Job ", cs.adminLimiter)
}

func (cs *CronService) loginSweepJob() {
	cs.sweep("Login RateLimit SWEEP Job ", cs.loginLimiter)
}

func (cs *CronService) contactSweepJob() {
	cs.sweep("Contact RateLimit SWEEP Job ", cs.contactLimiter)
}

func (cs *CronService) sweep(jobName string, limiter *RateLimiter) {
	if limiter == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := limiter.Sweep(ctx)
	if err != nil {
		zaplogger.Error(jobName, zaplogger.Fields{
			"error": err.Error(),
		})
		return
	}
	zaplogger.Debug(jobName, zaplogger.Fields{
		"entries_removed": removed,
	})
}
