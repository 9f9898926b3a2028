package logging

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// LoggerManager управляет логгерами компонентов
type LoggerManager struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{
			loggers: make(map[string]*Logger),
		}
	})
	return globalManager
}

// GetLogger возвращает логгер для компонента, создавая его при необходимости
func (lm *LoggerManager) GetLogger(component string) *Logger {
	lm.mu.RLock()
	if logger, exists := lm.loggers[component]; exists {
		lm.mu.RUnlock()
		return logger
	}
	lm.mu.RUnlock()

	lm.mu.Lock()
	defer lm.mu.Unlock()

	// Проверяем еще раз на случай race condition
	if logger, exists := lm.loggers[component]; exists {
		return logger
	}

	base, level := currentRoot()
	logger := &Logger{component: component, base: base, minLevel: level}
	lm.loggers[component] = logger
	return logger
}

// rebind переключает все логгеры на новый корневой логгер
func (lm *LoggerManager) rebind(base *logrus.Logger, level LogLevel) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	for _, logger := range lm.loggers {
		logger.mu.Lock()
		logger.base = base
		logger.minLevel = level
		logger.mu.Unlock()
	}
}

// ListComponents возвращает список всех зарегистрированных компонентов
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// SetLogLevel устанавливает уровень логирования для компонента
func (lm *LoggerManager) SetLogLevel(component string, level LogLevel) error {
	lm.mu.RLock()
	logger, exists := lm.loggers[component]
	lm.mu.RUnlock()

	if !exists {
		return fmt.Errorf("logger for component %s not found", component)
	}

	logger.SetLevel(level)
	return nil
}

// GetComponentLogger возвращает логгер компонента
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().GetLogger(component)
}

func GetNetworkLogger() *Logger {
	return GetComponentLogger("network")
}

func GetContainerLogger() *Logger {
	return GetComponentLogger("container")
}

func GetAppLogger() *Logger {
	return GetComponentLogger("app")
}
