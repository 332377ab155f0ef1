package logging

import (
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Logger пишет логи отдельного компонента. Остаётся валидным после повторного Init:
// менеджер перепривязывает его к новому базовому логгеру.
type Logger struct {
	component string
	sugar     atomic.Pointer[zap.SugaredLogger]
}

func newLogger(component string, l *zap.Logger) *Logger {
	lg := &Logger{component: component}
	lg.bind(l)
	return lg
}

func (l *Logger) bind(base *zap.Logger) {
	l.sugar.Store(base.Named(l.component).Sugar())
}

// Component возвращает имя компонента
func (l *Logger) Component() string {
	return l.component
}

// Debug логирует сообщение уровня DEBUG
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Load().Debugf(format, args...)
}

// Info логирует сообщение уровня INFO
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Load().Infof(format, args...)
}

// Warn логирует сообщение уровня WARN
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Load().Warnf(format, args...)
}

// Error логирует сообщение уровня ERROR
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Load().Errorf(format, args...)
}

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

// GetLogger возвращает логгер компонента, создавая его при необходимости
func (lm *LoggerManager) GetLogger(component string) *Logger {
	lm.mu.RLock()
	if logger, exists := lm.loggers[component]; exists {
		lm.mu.RUnlock()
		return logger
	}
	lm.mu.RUnlock()

	lm.mu.Lock()
	defer lm.mu.Unlock()

	// Проверяем ещё раз: между блокировками логгер мог быть создан
	if logger, exists := lm.loggers[component]; exists {
		return logger
	}

	mu.RLock()
	l := base
	mu.RUnlock()

	logger := newLogger(component, l)
	lm.loggers[component] = logger
	return logger
}

// ListComponents возвращает отсортированный список зарегистрированных компонентов
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

func (lm *LoggerManager) rebind(l *zap.Logger) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	for _, logger := range lm.loggers {
		logger.bind(l)
	}
}

// Component возвращает логгер компонента
func Component(name string) *Logger {
	return GetLoggerManager().GetLogger(name)
}
