// Package handlers exposes the report pipeline over HTTP for serve mode
package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"costwatch/pkg/config"
	"costwatch/pkg/response"
	"costwatch/pkg/scheduler"
)

// Notifier is the slice of the Slack client the test endpoint needs
type Notifier interface {
	PostMessage(ctx context.Context, channel, text, threadTS string) (string, error)
}

// HandlerService carries the dependencies of all HTTP handlers
type HandlerService struct {
	cfg       *config.Config
	runner    scheduler.ReportRunner
	sched     *scheduler.TaskScheduler
	notifier  Notifier
	startTime time.Time

	// runMutex keeps manual report runs from overlapping
	runMutex sync.Mutex
}

// NewHandlerService builds the handler service
func NewHandlerService(cfg *config.Config, runner scheduler.ReportRunner, notifier Notifier) *HandlerService {
	return &HandlerService{
		cfg:       cfg,
		runner:    runner,
		notifier:  notifier,
		startTime: time.Now(),
	}
}

// SetScheduler attaches the scheduler once it is constructed
func (h *HandlerService) SetScheduler(s *scheduler.TaskScheduler) {
	h.sched = s
}

// GetStatus handles GET /api/v1/status
func (h *HandlerService) GetStatus(c *gin.Context) {
	status := gin.H{
		"service":   "costwatch",
		"status":    "running",
		"timestamp": time.Now().UTC(),
		"uptime":    int64(time.Since(h.startTime).Seconds()),
		"projects":  len(h.cfg.Report.Projects),
	}
	if h.sched != nil {
		status["scheduler"] = h.sched.GetStatus()
	}
	response.OK(c, status)
}

// RunReports handles POST /api/v1/reports/run. The run executes
// synchronously; overlapping requests are rejected.
func (h *HandlerService) RunReports(c *gin.Context) {
	if !h.runMutex.TryLock() {
		response.Error(c, http.StatusConflict, "a report run is already in progress", nil)
		return
	}
	defer h.runMutex.Unlock()

	force := c.Query("force") == "true"
	summary := h.runner.Run(c.Request.Context(), force)

	status := http.StatusOK
	if summary.Failed > 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, summary)
}

// GetSchedulerStatus handles GET /api/v1/scheduler/status
func (h *HandlerService) GetSchedulerStatus(c *gin.Context) {
	if h.sched == nil {
		response.Error(c, http.StatusServiceUnavailable, "scheduler not running", nil)
		return
	}
	response.OK(c, h.sched.GetStatus())
}

// GetScheduledJobs handles GET /api/v1/scheduler/jobs
func (h *HandlerService) GetScheduledJobs(c *gin.Context) {
	if h.sched == nil {
		response.Error(c, http.StatusServiceUnavailable, "scheduler not running", nil)
		return
	}
	response.OK(c, gin.H{"jobs": h.sched.GetJobs()})
}

// TestNotification handles POST /api/v1/notifications/slack/test
func (h *HandlerService) TestNotification(c *gin.Context) {
	slackCfg := h.cfg.GetSlackConfig()
	if !slackCfg.Enabled {
		response.Error(c, http.StatusBadRequest, "slack notifications are disabled", nil)
		return
	}

	ts, err := h.notifier.PostMessage(c.Request.Context(), slackCfg.DefaultChannelID,
		"✅ costwatch test notification", "")
	if err != nil {
		response.Error(c, http.StatusBadGateway, "test notification failed", err)
		return
	}
	response.OK(c, gin.H{"ok": true, "ts": ts, "channel": slackCfg.DefaultChannelID})
}

// GetAppConfig handles GET /api/v1/config, with secrets redacted
func (h *HandlerService) GetAppConfig(c *gin.Context) {
	response.OK(c, gin.H{
		"billing_table":       h.cfg.Report.BillingTable,
		"backup_directory":    h.cfg.Report.BackupDirectory,
		"cache_backend":       h.cfg.Report.CacheBackend,
		"projects":            h.cfg.Report.Projects,
		"always_first":        h.cfg.Report.AlwaysFirst,
		"variance_threshold":  h.cfg.Report.VarianceThreshold,
		"query_cost_limit":    h.cfg.Report.QueryCostLimitUSD,
		"recent_days":         h.cfg.Report.RecentDays,
		"slack_enabled":       h.cfg.GetSlackConfig().Enabled,
		"slack_channel":       h.cfg.GetSlackConfig().DefaultChannelID,
		"scheduler_enabled":   h.cfg.Scheduler != nil && h.cfg.Scheduler.Enabled,
	})
}
