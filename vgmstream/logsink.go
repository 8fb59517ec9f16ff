package vgmstream

import (
	"fmt"
	"sync"
)

// Level mirrors spec 6's set_log levels.
type Level int

const (
	LevelAll   Level = 0
	LevelDebug Level = 20
	LevelInfo  Level = 30
	LevelNone  Level = 100
)

// LogFunc receives one formatted diagnostic line at the given level.
type LogFunc func(level Level, msg string)

// logSink is the process-wide, thread-safe log callback (spec 5's "Global
// log sink (single callback registered once)... must be thread-safe if
// callers use multiple streams across threads"). Initialized to a no-op so
// library load never depends on callback-registration ordering (design
// note: "avoid ordering hazards during library load").
var logSink struct {
	mu       sync.Mutex
	level    Level
	callback LogFunc
}

func init() {
	logSink.level = LevelNone
	logSink.callback = func(Level, string) {}
}

// SetLog installs the global log callback and minimum level. Passing a nil
// fn restores the no-op sink. This is spec 6's set_log.
func SetLog(level Level, fn LogFunc) {
	logSink.mu.Lock()
	defer logSink.mu.Unlock()
	logSink.level = level
	if fn == nil {
		fn = func(Level, string) {}
	}
	logSink.callback = fn
}

func logAt(level Level, format string, args ...any) {
	logSink.mu.Lock()
	minLevel, cb := logSink.level, logSink.callback
	logSink.mu.Unlock()
	if level < minLevel {
		return
	}
	cb(level, fmt.Sprintf(format, args...))
}

func logInfo(format string, args ...any)  { logAt(LevelInfo, format, args...) }
func logDebug(format string, args ...any) { logAt(LevelDebug, format, args...) }
