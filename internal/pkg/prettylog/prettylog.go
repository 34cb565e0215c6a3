package prettylog

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	ansiReset  = "\033[0m"
	ansiBlack  = "\033[30m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"
	ansiBgRed  = "\033[41m"
	ansiPurple = "\033[35m"
)

const (
	iconDebug = "⚙"
	iconInfo  = "ℹ"
	iconWarn  = "⚠"
	iconError = "✖"
	iconOK    = "✔"
	iconStart = "◐"
)

// HintKey is a special zap field key used to override the display level style.
const HintKey = "_pl"

const (
	HintReady = "ready"
	HintStart = "start"
)

var lastLogTimeMs atomic.Int64

func deltaMs(now time.Time) int64 {
	ms := now.UnixMilli()
	prev := lastLogTimeMs.Swap(ms)
	if prev == 0 {
		return 0
	}
	return ms - prev
}

var bufPool = buffer.NewPool()

// PrettyEncoder formats zap entries as one human readable line:
// time, level icon, [logger], message, sorted key=value fields, +delta.
type PrettyEncoder struct {
	*zapcore.MapObjectEncoder
	color bool
}

// NewEncoder creates a PrettyEncoder. Set color=true for ANSI terminal output.
func NewEncoder(color bool) zapcore.Encoder {
	return &PrettyEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder(), color: color}
}

// ShouldColor returns true when terminal colors should be enabled.
func ShouldColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Clone implements zapcore.Encoder.
func (e *PrettyEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range e.Fields {
		clone.Fields[k] = v
	}
	return &PrettyEncoder{MapObjectEncoder: clone, color: e.color}
}

// EncodeEntry implements zapcore.Encoder.
func (e *PrettyEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	merged := zapcore.NewMapObjectEncoder()
	for k, v := range e.Fields {
		merged.Fields[k] = v
	}
	for _, f := range fields {
		f.AddTo(merged)
	}

	hint := ""
	if v, ok := merged.Fields[HintKey]; ok {
		hint = fmt.Sprint(v)
		delete(merged.Fields, HintKey)
	}

	buf := bufPool.Get()
	badge := entry.Level >= zapcore.ErrorLevel

	e.paint(buf, ansiGray, entry.Time.Format("2006-01-02 15:04:05"))
	buf.AppendByte(' ')

	if badge {
		label := " " + strings.ToUpper(entry.Level.String()) + " "
		e.paint(buf, ansiBgRed+ansiBlack, label)
	} else {
		icon, color := resolveIcon(entry.Level, hint)
		e.paint(buf, color, icon)
	}
	buf.AppendByte(' ')

	if entry.LoggerName != "" {
		e.paint(buf, ansiYellow, "["+entry.LoggerName+"]")
		buf.AppendByte(' ')
	}

	buf.AppendString(entry.Message)

	keys := make([]string, 0, len(merged.Fields))
	for k := range merged.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		val := formatValue(merged.Fields[k])
		buf.AppendByte(' ')
		buf.AppendString(k)
		buf.AppendByte('=')
		if needsQuote(val) {
			buf.AppendString(strconv.Quote(val))
		} else {
			buf.AppendString(val)
		}
	}

	if delta := deltaMs(entry.Time); delta > 0 {
		e.paint(buf, ansiYellow, fmt.Sprintf(" +%dms", delta))
	}

	if badge && entry.Stack != "" {
		buf.AppendByte('\n')
		buf.AppendString(entry.Stack)
	}
	buf.AppendByte('\n')
	return buf, nil
}

func (e *PrettyEncoder) paint(buf *buffer.Buffer, color, text string) {
	if e.color && color != "" {
		buf.AppendString(color)
		buf.AppendString(text)
		buf.AppendString(ansiReset)
		return
	}
	buf.AppendString(text)
}

func resolveIcon(level zapcore.Level, hint string) (icon string, color string) {
	switch hint {
	case HintReady:
		return iconOK, ansiGreen
	case HintStart:
		return iconStart, ansiPurple
	}
	switch level {
	case zapcore.DebugLevel:
		return iconDebug, ansiGray
	case zapcore.WarnLevel:
		return iconWarn, ansiYellow
	case zapcore.ErrorLevel, zapcore.FatalLevel, zapcore.DPanicLevel, zapcore.PanicLevel:
		return iconError, ansiRed
	default:
		return iconInfo, ansiCyan
	}
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == ' ' || r == '"' || r == '=' || r == '\n' || r == '\r' || r == '\t' {
			return true
		}
		i += size
	}
	return false
}

// ReadyField hints the pretty encoder to render the entry with the success icon.
func ReadyField() zap.Field {
	return zap.String(HintKey, HintReady)
}

// StartField hints the pretty encoder to render the entry with the start icon.
func StartField() zap.Field {
	return zap.String(HintKey, HintStart)
}
