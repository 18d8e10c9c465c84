package timing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Parse converts a textual cadence into a Timing. Accepted forms:
//
//	immediate          always ready
//	disabled, off      never ready
//	60hz, 0.5Hz        fixed rate at the given frequency
//	250ms, 1s, 1m30s   fixed interval (any time.ParseDuration string)
//
// Parameters:
//   - s: the cadence text
//
// Returns:
//   - Timing: the parsed timing
//   - error: an error describing why s could not be parsed
func Parse(s string) (Timing, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	switch text {
	case "", "immediate":
		return Immediate(), nil
	case "disabled", "off", "never":
		return Disabled(), nil
	}

	if num, ok := strings.CutSuffix(text, "hz"); ok {
		hz, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return Timing{}, fmt.Errorf("timing: invalid frequency %q: %w", s, err)
		}
		return FixedRate(hz)
	}

	d, err := time.ParseDuration(text)
	if err != nil {
		return Timing{}, fmt.Errorf("timing: invalid cadence %q: expected immediate, disabled, <n>hz or a duration", s)
	}
	return FixedInterval(d)
}

// Text renders t in a form accepted by Parse. A fixed-rate timing whose period does not come
// from a frequency with at most three decimals is rendered as a duration, which parses back as a
// fixed interval.
func (t Timing) Text() string {
	switch t.kind {
	case KindImmediate:
		return "immediate"
	case KindDisabled:
		return "disabled"
	case KindFixedRate:
		hz := math.Round(float64(time.Second)/float64(t.period)*1000) / 1000
		if p, err := periodFromFrequency(hz); err == nil && p == t.period {
			return strconv.FormatFloat(hz, 'f', -1, 64) + "hz"
		}
		return t.period.String()
	default:
		return t.period.String()
	}
}
