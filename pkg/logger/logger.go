package logger

import (
	"log"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Level represents the severity level of a log message.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	NoticeLevel
	ErrorLevel
)

type Chain int

const (
	None = iota
	Near
	Eth
	Base
	Arb
	Sol
	Zec
	Btc
)

// chainNamespaceMap maps the CAIP-2 namespace prefix of a chain ID to
// the chain used for log prefixing. Unknown namespaces log unprefixed.
var chainNamespaceMap = map[string]Chain{
	"near":   Near,
	"eip155": Eth,
	"solana": Sol,
	"zcash":  Zec,
	"bip122": Btc,
}

// chainReferenceMap refines well-known eip155 references
var chainReferenceMap = map[string]Chain{
	"eip155:8453":  Base,
	"eip155:42161": Arb,
}

var chainPrefixes = map[Chain]string{
	None: "",
	Near: "[NEAR] ",
	Eth:  "[ETH]  ",
	Base: "[BASE] ",
	Arb:  "[ARB]  ",
	Sol:  "[SOL]  ",
	Zec:  "[ZEC]  ",
	Btc:  "[BTC]  ",
}

var colors = map[Chain]color.Attribute{
	None: color.FgWhite,
	Near: color.FgGreen,
	Eth:  color.FgHiGreen,
	Base: color.FgBlue,
	Arb:  color.FgHiBlue,
	Sol:  color.FgMagenta,
	Zec:  color.FgYellow,
	Btc:  color.FgHiYellow,
}

// chainForID resolves a CAIP-2 chain ID to its log prefix chain
func chainForID(chainID string) Chain {
	if c, ok := chainReferenceMap[chainID]; ok {
		return c
	}
	ns, _, found := strings.Cut(chainID, ":")
	if !found {
		return None
	}
	return chainNamespaceMap[ns]
}

// Logger is a simple interface for logging messages.
type Logger interface {
	// Info logs an informational message.
	Info(format string, args ...interface{})
	InfoWithChain(chainID string, format string, args ...interface{})

	// Error logs an error message.
	Error(format string, args ...interface{})
	ErrorWithChain(chainID string, format string, args ...interface{})

	// Debug logs a debug message.
	Debug(format string, args ...interface{})
	DebugWithChain(chainID string, format string, args ...interface{})

	// Notice logs a notice message.
	Notice(format string, args ...interface{})
	NoticeWithChain(chainID string, format string, args ...interface{})
}

// EmptyLogger is a simple implementation of the Logger interface that does nothing.
type EmptyLogger struct{}

var _ Logger = (*EmptyLogger)(nil)

func (l *EmptyLogger) Info(_ string, _ ...interface{})                      {}
func (l *EmptyLogger) InfoWithChain(_ string, _ string, _ ...interface{})   {}
func (l *EmptyLogger) Error(_ string, _ ...interface{})                     {}
func (l *EmptyLogger) ErrorWithChain(_ string, _ string, _ ...interface{})  {}
func (l *EmptyLogger) Debug(_ string, _ ...interface{})                     {}
func (l *EmptyLogger) DebugWithChain(_ string, _ string, _ ...interface{})  {}
func (l *EmptyLogger) Notice(_ string, _ ...interface{})                    {}
func (l *EmptyLogger) NoticeWithChain(_ string, _ string, _ ...interface{}) {}

// StdLogger is a standard implementation of the Logger interface that logs messages to the console.
type StdLogger struct {
	enableColoring bool
	level          Level
	mu             sync.Mutex
}

var _ Logger = (*StdLogger)(nil)

func NewStdLogger(enableColoring bool, level Level) *StdLogger {
	return &StdLogger{
		enableColoring: enableColoring,
		level:          level,
	}
}

// formatMessage formats the log message with the appropriate log level, chain prefix, and coloring if enabled.
func (l *StdLogger) formatMessage(level Level, chain Chain, format string) string {
	chainPrefix := chainPrefixes[chain]
	if l.enableColoring {
		chainPrefix = color.New(colors[chain]).Sprint(chainPrefix)
	}

	var levelStr string
	switch level {
	case DebugLevel:
		levelStr = "[DEBUG]  "
	case InfoLevel:
		levelStr = "[INFO]   "
	case NoticeLevel:
		levelStr = "[NOTICE] "
	case ErrorLevel:
		levelStr = "[ERROR]  "
	}

	return levelStr + chainPrefix + format
}

func (l *StdLogger) logf(level Level, chain Chain, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level <= level {
		log.Printf(l.formatMessage(level, chain, format), args...)
	}
}

func (l *StdLogger) Info(format string, args ...interface{}) {
	l.logf(InfoLevel, None, format, args...)
}

func (l *StdLogger) InfoWithChain(chainID string, format string, args ...interface{}) {
	l.logf(InfoLevel, chainForID(chainID), format, args...)
}

func (l *StdLogger) Error(format string, args ...interface{}) {
	l.logf(ErrorLevel, None, format, args...)
}

func (l *StdLogger) ErrorWithChain(chainID string, format string, args ...interface{}) {
	l.logf(ErrorLevel, chainForID(chainID), format, args...)
}

func (l *StdLogger) Debug(format string, args ...interface{}) {
	l.logf(DebugLevel, None, format, args...)
}

func (l *StdLogger) DebugWithChain(chainID string, format string, args ...interface{}) {
	l.logf(DebugLevel, chainForID(chainID), format, args...)
}

func (l *StdLogger) Notice(format string, args ...interface{}) {
	l.logf(NoticeLevel, None, format, args...)
}

func (l *StdLogger) NoticeWithChain(chainID string, format string, args ...interface{}) {
	l.logf(NoticeLevel, chainForID(chainID), format, args...)
}
