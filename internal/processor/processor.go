package processor

import (
	"regexp"
	"strings"

	"github.com/KHET-1/meowlogger/internal/model"
)

// Processor enriches a log entry and returns derived fields, or nil when it
// has nothing to contribute. Implementations must be stateless or internally
// thread-safe: the chain is invoked concurrently by the watcher goroutine
// and direct callers.
type Processor interface {
	Process(e *model.Entry) map[string]any
}

// ---------------------------------------------------------------------------
// Level Parser
// ---------------------------------------------------------------------------

// levelRecognizer pairs a compiled pattern with the capture group holding
// the level text (0 = whole match).
type levelRecognizer struct {
	re    *regexp.Regexp
	group int
}

// LevelParser extracts a severity level from the message text.
// Recognizes, in order: bracketed "[LEVEL]", leading "LEVEL:", and a bare
// level keyword anywhere in the line. Defaults to INFO.
type LevelParser struct {
	recognizers []levelRecognizer
}

func NewLevelParser() *LevelParser {
	return &LevelParser{
		recognizers: []levelRecognizer{
			{regexp.MustCompile(`\[(\w+)\]`), 1},
			{regexp.MustCompile(`^(\w+):`), 1},
			{regexp.MustCompile(`(?i)(DEBUG|INFO|WARNING|ERROR|CRITICAL|TRACE)`), 0},
		},
	}
}

func (p *LevelParser) Process(e *model.Entry) map[string]any {
	for _, r := range p.recognizers {
		if m := r.re.FindStringSubmatch(e.Message); m != nil {
			return map[string]any{"level": strings.ToUpper(m[r.group])}
		}
	}
	return map[string]any{"level": model.LevelInfo}
}

// ---------------------------------------------------------------------------
// Pattern Detector
// ---------------------------------------------------------------------------

// namedPattern is one detector with a stable name reported in results.
type namedPattern struct {
	name string
	re   *regexp.Regexp
}

// PatternDetector matches a fixed set of named patterns against the message
// and reports the names that hit under the "patterns" key.
type PatternDetector struct {
	patterns []namedPattern
}

func NewPatternDetector() *PatternDetector {
	return &PatternDetector{
		patterns: []namedPattern{
			{"error", regexp.MustCompile(`(?i)error|exception|failed`)},
			{"warning", regexp.MustCompile(`(?i)warning|warn|caution`)},
			{"performance", regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(ms|seconds?|minutes?)`)},
			{"memory", regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(MB|GB|KB)`)},
			{"ip_address", regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
			{"url", regexp.MustCompile(`https?://\S+`)},
			{"stacktrace", regexp.MustCompile(`(?i)traceback|stack trace|at line \d+`)},
		},
	}
}

func (p *PatternDetector) Process(e *model.Entry) map[string]any {
	var detected []string
	for _, np := range p.patterns {
		if np.re.MatchString(e.Message) {
			detected = append(detected, np.name)
		}
	}
	if len(detected) == 0 {
		return nil
	}
	return map[string]any{"patterns": detected}
}
