package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/devmatch-io/devmatch/dao/model"
	"github.com/devmatch-io/devmatch/internal/resputil"
)

type MetricsMgr struct {
	name string
	db   *gorm.DB
}

func NewMetricsMgr(conf *RegisterConfig) Manager {
	return &MetricsMgr{
		name: "metrics",
		db:   conf.DB,
	}
}

func (mgr *MetricsMgr) GetName() string { return mgr.name }

func (mgr *MetricsMgr) RegisterPublic(metrics *gin.RouterGroup) {
	metrics.GET("", mgr.GetMetrics)
}

func (mgr *MetricsMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *MetricsMgr) RegisterAdmin(_ *gin.RouterGroup) {}

var registry *prometheus.Registry

var promHTTPHandler http.Handler

var pendingCandidatesGauge = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "pending_candidates_total",
		Help: "Invites currently awaiting a response",
	},
)

var activeBatchesGauge = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "active_batches_total",
		Help: "Batches currently collecting responses",
	},
)

var acceptedProjectsGauge = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "accepted_projects_total",
		Help: "Projects claimed by a developer",
	},
)

var expiredTodayGauge = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "expired_candidates_today",
		Help: "Invites expired since midnight",
	},
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewMetricsMgr)
	registry = prometheus.NewRegistry()
	promHTTPHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	registry.MustRegister(pendingCandidatesGauge)
	registry.MustRegister(activeBatchesGauge)
	registry.MustRegister(acceptedProjectsGauge)
	registry.MustRegister(expiredTodayGauge)
}

// GetMetrics godoc
// @Summary Expose rotation gauges in Prometheus format
// @Description Gauges are scraped from the database on each request
// @Tags Metrics
// @Produce plain
// @Success 200 {string} string "metrics"
// @Router /metrics [get]
func (mgr *MetricsMgr) GetMetrics(c *gin.Context) {
	if err := mgr.scrape(c); err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	promHTTPHandler.ServeHTTP(c.Writer, c.Request)
}

func (mgr *MetricsMgr) scrape(c *gin.Context) error {
	db := mgr.db.WithContext(c)

	var pending, active, accepted, expired int64
	if err := db.Model(&model.Candidate{}).
		Where("response_status = ?", model.ResponsePending).
		Count(&pending).Error; err != nil {
		return err
	}
	if err := db.Model(&model.Batch{}).
		Where("status = ?", model.BatchActive).
		Count(&active).Error; err != nil {
		return err
	}
	if err := db.Model(&model.Project{}).
		Where("status = ?", model.ProjectAccepted).
		Count(&accepted).Error; err != nil {
		return err
	}
	midnight := time.Now().Truncate(24 * time.Hour)
	if err := db.Model(&model.Candidate{}).
		Where("response_status = ? AND responded_at >= ?", model.ResponseExpired, midnight).
		Count(&expired).Error; err != nil {
		return err
	}

	pendingCandidatesGauge.Set(float64(pending))
	activeBatchesGauge.Set(float64(active))
	acceptedProjectsGauge.Set(float64(accepted))
	expiredTodayGauge.Set(float64(expired))
	return nil
}
