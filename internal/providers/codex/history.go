package codex

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/janekbaraniewski/usagedash/internal/core"
)

const historyTailLines = 300

var (
	fiveHourRe = regexp.MustCompile(`(?i)5h limit:\s*\[[^\]]*\]\s*([0-9]{1,3})% left \(resets ([0-9]{2}:[0-9]{2})\)`)
	weeklyRe   = regexp.MustCompile(`(?i)weekly limit:\s*\[[^\]]*\]\s*([0-9]{1,3})% left \(resets ([0-9]{2}:[0-9]{2}) on ([0-9]{1,2} [A-Za-z]{3})\)`)
)

const msgHistoryUnparsed = "unable to parse Codex usage, fallback to manual config"

// readHistory scans the tail of the free-text history log, newest line
// first, for the status-line limit summaries Codex prints.
func readHistory(path string, now time.Time) *core.PartialUsage {
	partial := &core.PartialUsage{}

	lines, err := tailLines(path, historyTailLines)
	if err != nil {
		if os.IsNotExist(err) {
			partial.AddMessage(fmt.Sprintf("missing %s", path))
		} else {
			partial.AddMessage(fmt.Sprintf("unreadable %s", path))
		}
		return partial
	}

	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]

		if partial.SessionUsedPct == nil {
			if m := fiveHourRe.FindStringSubmatch(line); m != nil {
				partial.SessionUsedPct = usedFromLeft(m[1])
				if reset, ok := clockToday(m[2], now); ok {
					partial.SessionResetAt = &reset
				}
			}
		}

		if partial.WeeklyUsedPct == nil {
			if m := weeklyRe.FindStringSubmatch(line); m != nil {
				partial.WeeklyUsedPct = usedFromLeft(m[1])
				if reset, ok := dayMonthClock(m[3], m[2], now); ok {
					partial.WeeklyResetAt = &reset
				}
			}
		}

		if partial.SessionUsedPct != nil && partial.WeeklyUsedPct != nil {
			break
		}
	}

	if partial.SessionUsedPct == nil && partial.WeeklyUsedPct == nil {
		partial.AddMessage(msgHistoryUnparsed)
		return partial
	}
	partial.Details = core.CodexDetails{Source: "history"}
	return partial
}

// tailLines returns at most n trailing lines of the file, oldest first.
func tailLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if n <= 0 {
		return nil, nil
	}

	ring := make([]string, n)
	count := 0
	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxScannerBufferSize)
	for scanner.Scan() {
		ring[count%n] = scanner.Text()
		count++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if count <= n {
		return ring[:count], nil
	}
	start := count % n
	return append(ring[start:], ring[:start]...), nil
}

func usedFromLeft(s string) *float64 {
	left, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return core.Float64Ptr(max(0, 100-left))
}

func clockToday(hhmm string, now time.Time) (time.Time, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, now.Location()), true
}

// dayMonthClock resolves "9 Mar" plus "10:00" in the current year.
func dayMonthClock(dayMonth, hhmm string, now time.Time) (time.Time, bool) {
	value := fmt.Sprintf("%s %d %s", dayMonth, now.Year(), hhmm)
	t, err := time.ParseInLocation("2 Jan 2006 15:04", value, now.Location())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
