// Package metrics 提供 Prometheus 监控指标，包括 HTTP 请求指标与文件上传/删除业务指标.
//
// Example:
//
//	import "github.com/yeisme/filedock/pkg/metrics"
//
//	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.FileUploads.WithLabelValues("image", metrics.ResultOK).Inc()
//	engine.GET(cfg.Metrics.Path, metrics.Handler())
package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/filedock/pkg/configs"
)

const namespace = "filedock"

// 业务指标 result 标签取值.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 处理中的请求数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of in-flight HTTP requests",
		},
	)

	// FileUploads 上传结果计数，按分类与结果.
	FileUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_uploads_total",
			Help:      "Uploads by category and result",
		},
		[]string{"category", "result"},
	)

	// UploadedBytes 成功写入的字节数.
	UploadedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_uploaded_bytes_total",
			Help:      "Bytes written to the upload directory",
		},
	)

	// FileDeletes 删除结果计数. physical 取值 ok, missing, failed.
	FileDeletes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_deletes_total",
			Help:      "Record deletions by physical removal outcome",
		},
		[]string{"physical"},
	)

	// SweepFindings 清理任务发现的不一致，按类型与是否已处理.
	SweepFindings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_findings_total",
			Help:      "Orphans found by the sweep job",
		},
		[]string{"kind", "removed"},
	)

	registry = prometheus.NewRegistry()
	initOnce sync.Once
)

// InitMetrics 注册全部指标，重复调用无副作用.
func InitMetrics(cfg configs.MetricsConfig) error {
	if !cfg.Enabled {
		return nil
	}

	var err error

	initOnce.Do(func() {
		reg := prometheus.WrapRegistererWith(prometheus.Labels(cfg.Labels), registry)

		cs := []prometheus.Collector{
			RequestCounter, RequestDuration, ActiveConnections,
			FileUploads, UploadedBytes, FileDeletes, SweepFindings,
		}

		if cfg.RuntimeMetrics {
			cs = append(cs,
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}

		for _, c := range cs {
			if err = reg.Register(c); err != nil {
				return
			}
		}
	})

	return err
}

// Handler 返回 /metrics 处理器，同时导出默认注册表（gorm、watermill 指标注册在其中）.
func Handler() gin.HandlerFunc {
	gatherers := prometheus.Gatherers{registry, prometheus.DefaultGatherer}

	return gin.WrapH(promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}))
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
