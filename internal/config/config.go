package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации.
// Необязательные интеграции включаются только когда заданы их адреса.
type Config struct {
	Decode    DecodeConfig    `yaml:"decode"`
	Log       LogConfig       `yaml:"log"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Cache     CacheConfig     `yaml:"cache"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type DecodeConfig struct {
	Crc           string `yaml:"crc"`     // always | never | on-error
	Network       string `yaml:"network"` // always | never | ignore-on-error
	StrictDeletes bool   `yaml:"strict_deletes"`
	MaxFrames     int    `yaml:"max_frames"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

type ArchiveConfig struct {
	Path string `yaml:"path"`
}

type CacheConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

type EventBusConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// GetCrc возвращает режим проверки CRC
func (d *DecodeConfig) GetCrc() string {
	return getStringWithEnvFallback(d.Crc, "BOXCARS_CRC", "on-error")
}

// GetNetwork возвращает режим разбора сетевого потока
func (d *DecodeConfig) GetNetwork() string {
	return getStringWithEnvFallback(d.Network, "BOXCARS_NETWORK", "ignore-on-error")
}

// GetMaxFrames возвращает ограничение числа кадров (0 - без ограничения)
func (d *DecodeConfig) GetMaxFrames() int {
	return getIntWithEnvFallback(d.MaxFrames, "BOXCARS_MAX_FRAMES", 0)
}

// GetLevel возвращает уровень логирования
func (l *LogConfig) GetLevel() string {
	return getStringWithEnvFallback(l.Level, "BOXCARS_LOG_LEVEL", "INFO")
}

// GetPath возвращает путь к архиву badger; пусто - архив выключен
func (a *ArchiveConfig) GetPath() string {
	return getStringWithEnvFallback(a.Path, "BOXCARS_ARCHIVE", "")
}

// GetAddr возвращает адрес Redis; пусто - кеш выключен
func (c *CacheConfig) GetAddr() string {
	return getStringWithEnvFallback(c.Addr, "BOXCARS_REDIS_ADDR", "")
}

// GetTTL возвращает время жизни записей кеша
func (c *CacheConfig) GetTTL() time.Duration {
	return time.Duration(getIntWithEnvFallback(c.TTLMinutes, "BOXCARS_CACHE_TTL_MINUTES", 24*60)) * time.Minute
}

// GetURL возвращает адрес NATS; пусто - публикация выключена
func (e *EventBusConfig) GetURL() string {
	return getStringWithEnvFallback(e.URL, "BOXCARS_NATS_URL", "")
}

// GetSubject возвращает тему публикации
func (e *EventBusConfig) GetSubject() string {
	return getStringWithEnvFallback(e.Subject, "BOXCARS_NATS_SUBJECT", "replay.decoded")
}

// GetServiceName возвращает имя сервиса для трассировки
func (t *TelemetryConfig) GetServiceName() string {
	return getStringWithEnvFallback(t.ServiceName, "OTEL_SERVICE_NAME", "boxcars")
}

// GetAddr возвращает адрес HTTP для Prometheus; пусто - не поднимать
func (m *MetricsConfig) GetAddr() string {
	return getStringWithEnvFallback(m.Addr, "BOXCARS_METRICS_ADDR", "")
}

// getStringWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getStringWithEnvFallback(configVal, envVar, defaultVal string) string {
	if configVal != "" {
		return configVal
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return defaultVal
}

// getIntWithEnvFallback возвращает число с приоритетом: config -> env -> default
func getIntWithEnvFallback(configVal int, envVar string, defaultVal int) int {
	// Если значение задано в конфиге и больше 0, используем его
	if configVal > 0 {
		return configVal
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	return defaultVal
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать путь из ENV BOXCARS_CONFIG; если и он
// не задан, возвращает пустой конфиг (работают значения по умолчанию).
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("BOXCARS_CONFIG")
		if path == "" {
			return &Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
