package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/janekbaraniewski/usagedash/internal/core"
)

// localTimeLayouts are accepted for manual reset times without an offset;
// they are interpreted in the local zone.
var localTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Set assigns a dotted key such as "general.refresh_seconds" or
// "providers.codex.manual.session_used_pct". Manual fields accept "none"
// to clear the value.
func Set(cfg *Config, key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case "general.refresh_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", key, value)
		}
		cfg.General.RefreshSeconds = n
		return nil
	case "general.timezone":
		probe := Config{General: GeneralConfig{Timezone: value}}
		if _, err := probe.Location(); err != nil {
			return err
		}
		cfg.General.Timezone = value
		return nil
	case "general.state_file":
		cfg.General.StateFile = value
		return nil
	case "general.windows_state_path":
		cfg.General.WindowsStatePath = value
		return nil
	case "general.state_db":
		cfg.General.StateDB = value
		return nil
	}

	parts := strings.Split(key, ".")
	if len(parts) < 3 || parts[0] != "providers" {
		return fmt.Errorf("unsupported key: %s", key)
	}

	pc := cfg.provider(core.ProviderName(parts[1]))
	if pc == nil {
		return fmt.Errorf("unknown provider: %s", parts[1])
	}

	switch {
	case len(parts) == 3 && parts[2] == "enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		pc.Enabled = b
		return nil
	case len(parts) == 3 && parts[2] == "parser_mode":
		switch value {
		case core.ParserModeHybrid, core.ParserModeParsed, core.ParserModeManual:
			pc.ParserMode = value
			return nil
		}
		return fmt.Errorf("%s must be hybrid, parsed or manual, got %q", key, value)
	case len(parts) == 4 && parts[2] == "manual":
		return setManualField(&pc.Manual, parts[3], value)
	}

	return fmt.Errorf("unsupported key: %s", key)
}

func setManualField(m *core.ManualFields, field, value string) error {
	unset := value == "" || strings.EqualFold(value, "none")

	switch field {
	case "session_used_pct", "weekly_used_pct":
		var pct *float64
		if !unset {
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("manual.%s must be a number, got %q", field, value)
			}
			pct = &f
		}
		if field == "session_used_pct" {
			m.SessionUsedPct = pct
		} else {
			m.WeeklyUsedPct = pct
		}
		return nil
	case "session_reset_at", "weekly_reset_at":
		var ts *time.Time
		if !unset {
			t, err := parseManualTime(value)
			if err != nil {
				return fmt.Errorf("manual.%s: %w", field, err)
			}
			ts = &t
		}
		if field == "session_reset_at" {
			m.SessionResetAt = ts
		} else {
			m.WeeklyResetAt = ts
		}
		return nil
	}
	return fmt.Errorf("unknown manual field: %s", field)
}

func parseManualTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q (want RFC 3339)", value)
}
