package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ConsoleLogger writes timestamped log lines and diagnostics to a writer.
// Tags are colored only when the writer is the process's own terminal.
// It is safe for concurrent use.
type ConsoleLogger struct {
	mu       sync.Mutex
	out      io.Writer
	minLevel Level
	colored  bool
}

// NewConsoleLogger creates a ConsoleLogger. A nil writer discards everything;
// an unknown level name means "info".
func NewConsoleLogger(out io.Writer, level string) *ConsoleLogger {
	return &ConsoleLogger{
		out:      out,
		minLevel: ParseLevel(level),
		colored:  colorCapable(out),
	}
}

// colorCapable honours NO_COLOR through color.NoColor.
func colorCapable(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil || color.NoColor {
		return false
	}
	if f != os.Stdout && f != os.Stderr {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (cl *ConsoleLogger) LogTrace(message string) { cl.log(LevelTrace, message) }
func (cl *ConsoleLogger) LogDebug(message string) { cl.log(LevelDebug, message) }
func (cl *ConsoleLogger) LogInfo(message string)  { cl.log(LevelInfo, message) }
func (cl *ConsoleLogger) LogWarn(message string)  { cl.log(LevelWarn, message) }
func (cl *ConsoleLogger) LogError(message string) { cl.log(LevelError, message) }

// Report implements Sink.
func (cl *ConsoleLogger) Report(d Diagnostic) {
	cl.log(d.Kind.Level(), d.String())
}

// Enabled reports whether messages at level are written.
func (cl *ConsoleLogger) Enabled(level Level) bool {
	return cl.out != nil && level >= cl.minLevel
}

func (cl *ConsoleLogger) log(level Level, message string) {
	if !cl.Enabled(level) {
		return
	}
	tag := "[" + level.Tag() + "]"
	if cl.colored {
		tag = tagColor(level).Sprint(tag)
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()
	fmt.Fprintf(cl.out, "[%s] %s %s\n", time.Now().Format("15:04:05"), tag, message)
}

func tagColor(level Level) *color.Color {
	switch level {
	case LevelWarn:
		return color.New(color.FgYellow)
	case LevelError:
		return color.New(color.FgRed, color.Bold)
	case LevelTrace, LevelDebug:
		return color.New(color.FgHiBlack)
	default:
		return color.New(color.FgCyan)
	}
}
