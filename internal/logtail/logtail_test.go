package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestFormatLine(t *testing.T) {
	ts := time.Date(2025, 10, 8, 21, 1, 5, 0, time.Local).Format(time.RFC3339Nano)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty line",
			input:    "",
			expected: "",
		},
		{
			name:     "plain text passes through",
			input:    "   not json",
			expected: "   not json",
		},
		{
			name:     "broken json passes through",
			input:    `{"time":`,
			expected: `{"time":`,
		},
		{
			name:     "info record with attrs sorted",
			input:    `{"time":"` + ts + `","level":"INFO","msg":"added todo","id":"abc","done":true}`,
			expected: "2025-10-08 21:01:05 INFO  added todo done=true id=abc",
		},
		{
			name:     "warn record with spaced value and number",
			input:    `{"time":"` + ts + `","level":"WARN","msg":"fetch failed","error":"connection refused","seq":3}`,
			expected: `2025-10-08 21:01:05 WARN  fetch failed error="connection refused" seq=3`,
		},
		{
			name:     "record without time",
			input:    `{"level":"DEBUG","msg":"hi"}`,
			expected: "DEBUG hi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatLine(tt.input, false)
			if result != tt.expected {
				t.Errorf("FormatLine() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestFormatLines(t *testing.T) {
	input := []string{
		`{"level":"INFO","msg":"session start"}`,
		"stray text",
	}
	expected := []string{"INFO  session start", "stray text"}

	result := FormatLines(input, false)
	if !reflect.DeepEqual(result, expected) {
		t.Errorf("FormatLines() = %q, want %q", result, expected)
	}
}
