package logger

import "strings"

// Level orders log messages by verbosity; higher is more severe.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"trace", "debug", "info", "warn", "error"}

// ParseLevel reads a case-insensitive level name. Empty or unknown names
// fall back to LevelInfo.
func ParseLevel(name string) Level {
	if l, ok := lookupLevel(name); ok {
		return l
	}
	return LevelInfo
}

// ValidLevel reports whether name is a supported log level.
func ValidLevel(name string) bool {
	_, ok := lookupLevel(name)
	return ok
}

func lookupLevel(name string) (Level, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range levelNames {
		if n == name {
			return Level(i), true
		}
	}
	return LevelInfo, false
}

// String returns the lower-case level name.
func (l Level) String() string {
	if l < LevelTrace || l > LevelError {
		return "info"
	}
	return levelNames[l]
}

// Tag is the upper-case form written in log lines.
func (l Level) Tag() string {
	return strings.ToUpper(l.String())
}

// Level is the log level a diagnostic of this kind is written at.
func (k Kind) Level() Level {
	if k == KindGenerationFailed {
		return LevelError
	}
	return LevelWarn
}
