package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileWriter_CreatesNestedPath(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "commit-notifier.log")

	w := NewFileWriter(FileConfig{Path: logPath, MaxSizeMB: 10, MaxFiles: 3})

	msg := []byte(`{"level":"info","message":"message delivered"}` + "\n")
	n, err := w.Write(msg)
	if err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	if n != len(msg) {
		t.Errorf("expected %d bytes written, got %d", len(msg), n)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if string(data) != string(msg) {
		t.Errorf("expected file content %q, got %q", msg, data)
	}
}
