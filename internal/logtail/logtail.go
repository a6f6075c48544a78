package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

var (
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#87AFFF"))
	levelStyle = map[string]lipgloss.Style{
		"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true),
		"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true),
		"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	}
)

// FormatLine renders one JSON log record as
// "2006-01-02 15:04:05 LEVEL message key=value ...". Lines that are not JSON
// records are returned unchanged. With color set, lipgloss styles are applied.
func FormatLine(line string, color bool) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return line
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(trimmed), &rec); err != nil {
		return line
	}

	ts := stringField(rec, "time")
	if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		ts = parsed.Local().Format("2006-01-02 15:04:05")
	}
	level := strings.ToUpper(stringField(rec, "level"))
	msg := stringField(rec, "msg")
	delete(rec, "time")
	delete(rec, "level")
	delete(rec, "msg")

	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	paint := func(s lipgloss.Style, text string) string {
		if !color || text == "" {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	if ts != "" {
		b.WriteString(paint(timeStyle, ts))
		b.WriteByte(' ')
	}
	if level != "" {
		b.WriteString(paint(levelStyle[level], fmt.Sprintf("%-5s", level)))
		b.WriteByte(' ')
	}
	b.WriteString(msg)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(paint(keyStyle, k))
		b.WriteByte('=')
		b.WriteString(formatValue(rec[k]))
	}
	return b.String()
}

// FormatLines applies FormatLine to every line.
func FormatLines(lines []string, color bool) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = FormatLine(line, color)
	}
	return out
}

func stringField(rec map[string]any, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}
