package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestManagePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")

	cleanup, err := managePIDFile(path, true)
	if err != nil {
		t.Fatalf("managePIDFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != strconv.Itoa(os.Getpid()) {
		t.Errorf("PID file contains %q", got)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("PID file not removed: %v", err)
	}
}

func TestManagePIDFileStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")
	if err := os.WriteFile(path, []byte("garbage\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := managePIDFile(path, true); err == nil {
		t.Error("corrupted PID file should be rejected when locking")
	}

	// without locking the file is simply overwritten
	cleanup, err := managePIDFile(path, false)
	if err != nil {
		t.Fatalf("managePIDFile: %v", err)
	}
	cleanup()
}
