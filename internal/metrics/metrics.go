// Package metrics экспортирует метрики декодирования в Prometheus.
package metrics

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/levelonedev/boxcars/internal/decodeerr"
	"github.com/levelonedev/boxcars/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/process"
)

// DecodeMetrics счётчики и гистограммы декодирования реплеев
type DecodeMetrics struct {
	StartTime time.Time

	decoded  *prometheus.CounterVec
	frames   prometheus.Counter
	bytes    prometheus.Counter
	duration prometheus.Histogram
	cacheHit *prometheus.CounterVec
	rss      prometheus.Gauge
	cpu      prometheus.Gauge
}

// NewDecodeMetrics создаёт метрики и регистрирует их в reg.
// Если reg == nil, используется глобальный регистр Prometheus.
func NewDecodeMetrics(reg prometheus.Registerer) *DecodeMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &DecodeMetrics{
		StartTime: time.Now(),
		decoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boxcars",
			Name:      "replays_decoded_total",
			Help:      "Число декодированных реплеев по результату.",
		}, []string{"result"}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "boxcars",
			Name:      "frames_decoded_total",
			Help:      "Общее число декодированных кадров.",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "boxcars",
			Name:      "input_bytes_total",
			Help:      "Объём разобранных файлов реплеев.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "boxcars",
			Name:      "decode_duration_seconds",
			Help:      "Время декодирования одного реплея.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		cacheHit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boxcars",
			Name:      "summary_cache_lookups_total",
			Help:      "Обращения к кешу сводок по результату.",
		}, []string{"result"}),
		rss: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "boxcars",
			Name:      "process_rss_bytes",
			Help:      "Резидентная память процесса после последнего декодирования.",
		}),
		cpu: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "boxcars",
			Name:      "process_cpu_percent",
			Help:      "Загрузка CPU процессом.",
		}),
	}

	reg.MustRegister(m.decoded, m.frames, m.bytes, m.duration, m.cacheHit, m.rss, m.cpu)
	return m
}

// resultLabel метка результата: ok или категория ошибки
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if c := decodeerr.CategoryOf(err); c != 0 {
		return c.String()
	}
	return "error"
}

// ObserveDecode учитывает одно декодирование
func (m *DecodeMetrics) ObserveDecode(elapsed time.Duration, inputBytes, frames int, err error) {
	m.decoded.WithLabelValues(resultLabel(err)).Inc()
	m.duration.Observe(elapsed.Seconds())
	m.bytes.Add(float64(inputBytes))
	if err == nil {
		m.frames.Add(float64(frames))
	}
}

// ObserveCache учитывает обращение к кешу сводок
func (m *DecodeMetrics) ObserveCache(hit bool) {
	if hit {
		m.cacheHit.WithLabelValues("hit").Inc()
	} else {
		m.cacheHit.WithLabelValues("miss").Inc()
	}
}

// SampleProcess обновляет метрики памяти и CPU процесса
func (m *DecodeMetrics) SampleProcess() error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	mem, err := proc.MemoryInfo()
	if err != nil {
		return err
	}
	m.rss.Set(float64(mem.RSS))

	// CPU не критичен: на некоторых платформах недоступен
	if cpuPercent, err := proc.CPUPercent(); err == nil {
		m.cpu.Set(cpuPercent)
	}
	return nil
}

// GetUptime возвращает время работы процесса
func (m *DecodeMetrics) GetUptime() string {
	uptime := time.Since(m.StartTime)

	hours := int(uptime.Hours())
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	}
	return fmt.Sprintf("%dс", seconds)
}

// StartHTTP запускает HTTP-эндпоинт /metrics на указанном адресе (например, ":2112").
// Метод неблокирующий: сервер стартует в отдельной горутине.
func StartHTTP(addr string, gatherer prometheus.Gatherer) *http.Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logging.Info("Prometheus /metrics доступен по адресу %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	return srv
}
