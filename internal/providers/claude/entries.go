package claude

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const maxLineSize = 10 * 1024 * 1024

// usageEntry is one deduplicated assistant turn.
type usageEntry struct {
	Timestamp time.Time
	Tokens    int64
	Model     string
}

type jsonlEntry struct {
	Type      string    `json:"type"`
	Timestamp string    `json:"timestamp"`
	UUID      string    `json:"uuid"`
	RequestID string    `json:"requestId"`
	ReqIDAlt  string    `json:"request_id"`
	Message   *jsonlMsg `json:"message,omitempty"`
}

type jsonlMsg struct {
	ID    string      `json:"id"`
	Model string      `json:"model"`
	Role  string      `json:"role"`
	Usage *jsonlUsage `json:"usage,omitempty"`
}

// Cache read and creation tokens are left out of totals.
type jsonlUsage struct {
	InputTokens  float64 `json:"input_tokens"`
	OutputTokens float64 `json:"output_tokens"`
}

// collectJSONLFiles walks each project root for session logs, skipping
// sub-agent traces. The result is sorted so dedup is stable across runs.
func collectJSONLFiles(dirs []string) []string {
	var files []string
	for _, dir := range dirs {
		_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if info.Name() == "subagents" {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".jsonl") && !isSubagentPath(path) {
				files = append(files, path)
			}
			return nil
		})
	}
	sort.Strings(files)
	return files
}

func isSubagentPath(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == "subagents" {
			return true
		}
	}
	return false
}

// entrySet accumulates entries across files, dropping repeated identities.
type entrySet struct {
	seen   map[string]struct{}
	byFile map[string][]usageEntry
	all    []usageEntry
}

func newEntrySet() *entrySet {
	return &entrySet{
		seen:   make(map[string]struct{}),
		byFile: make(map[string][]usageEntry),
	}
}

// readFile adds the qualifying entries of one session log. Malformed lines
// are skipped; an open or read failure is returned so the caller can skip
// the file.
func (s *entrySet) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, ok := s.byFile[path]; !ok {
		s.byFile[path] = nil
	}

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 256*1024)
	scanner.Buffer(buf, maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if !bytes.Contains(line, []byte(`"usage"`)) {
			continue
		}
		var raw jsonlEntry
		if err := json.Unmarshal(line, &raw); err != nil {
			continue
		}
		entry, id, ok := qualify(raw)
		if !ok {
			continue
		}
		if _, dup := s.seen[id]; dup {
			continue
		}
		s.seen[id] = struct{}{}
		if entry.Tokens <= 0 {
			continue
		}
		s.byFile[path] = append(s.byFile[path], entry)
		s.all = append(s.all, entry)
	}
	return scanner.Err()
}

// qualify converts a raw log line into an entry. Only primary assistant
// turns with a usage object and an identity count.
func qualify(raw jsonlEntry) (usageEntry, string, bool) {
	ts, ok := parseTimestamp(raw.Timestamp)
	if !ok {
		return usageEntry{}, "", false
	}
	if raw.Type != "assistant" || raw.Message == nil || raw.Message.Role != "assistant" || raw.Message.Usage == nil {
		return usageEntry{}, "", false
	}
	id := entryIdentity(raw)
	if id == "" {
		return usageEntry{}, "", false
	}

	model := raw.Message.Model
	if model == "" {
		model = "unknown"
	}
	return usageEntry{
		Timestamp: ts,
		Tokens:    int64(raw.Message.Usage.InputTokens + raw.Message.Usage.OutputTokens),
		Model:     model,
	}, id, true
}

// entryIdentity prefers (request, message) over (request, uuid) over either
// id alone.
func entryIdentity(raw jsonlEntry) string {
	rid := raw.RequestID
	if rid == "" {
		rid = raw.ReqIDAlt
	}
	var mid string
	if raw.Message != nil {
		mid = raw.Message.ID
	}

	switch {
	case rid != "" && mid != "":
		return rid + ":" + mid
	case rid != "" && raw.UUID != "":
		return rid + ":" + raw.UUID
	case mid != "":
		return mid
	default:
		return raw.UUID
	}
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
