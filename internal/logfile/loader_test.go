package logfile

import (
	"os"
	"path/filepath"
	"testing"

	"sessionlens/internal/analysis"
)

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadSession(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "s1.jsonl", `{"type":"session_info","id":"hdr","timestamp":"2026-01-02T09:00:00Z","sessionInfo":{"sessionId":"s-1","path":"/logs/s1.jsonl"}}
{"type":"message","id":"a","timestamp":"2026-01-02T09:00:01Z","message":{"role":"user","text":"hello"}}
this line is not json at all
{"type":"message","id":"b","parentId":"a","timestamp":"2026-01-02T09:00:02Z","message":{"role":"assistant","text":"hi"}}

{"type":"message","timestamp":"2026-01-02T09:00:03Z","parentId":"b","message":{"role":"user","text":"no id on this one"}}
`)

	sess, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sess.Entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(sess.Entries))
	}
	if sess.Malformed != 1 {
		t.Fatalf("malformed = %d, want 1", sess.Malformed)
	}
	if sess.Header.SessionID != "s-1" || sess.Header.Path != "/logs/s1.jsonl" {
		t.Fatalf("header = %+v, want sessionId s-1", sess.Header)
	}
	last := sess.Entries[len(sess.Entries)-1]
	if last.ID == "" {
		t.Fatal("entry without an id must receive a synthetic one")
	}
	if last.ParentID != "b" {
		t.Fatalf("synthetic-id entry parent = %q, want b", last.ParentID)
	}
}

func TestLoadHeaderDefaultsToFilePath(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "plain.jsonl", `{"type":"message","id":"a","timestamp":"2026-01-02T09:00:00Z","message":{"role":"user","text":"x"}}
`)
	sess, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess.Header.Path != path {
		t.Fatalf("header path = %q, want the file path %q", sess.Header.Path, path)
	}
	if sess.Header.SessionID != "" {
		t.Fatalf("header sessionId = %q, want empty without a declaration", sess.Header.SessionID)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadDirAndForkHeaders(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "root.jsonl", `{"type":"session_info","id":"h1","timestamp":"2026-01-02T09:00:00Z","sessionInfo":{"sessionId":"s-root","path":"root.jsonl"}}
`)
	writeLog(t, dir, "child.jsonl", `{"type":"session_info","id":"h2","timestamp":"2026-01-02T10:00:00Z","sessionInfo":{"sessionId":"s-child","path":"child.jsonl","parentPath":"root.jsonl"}}
`)
	writeLog(t, dir, "notes.txt", "not a session log")

	sessions, skipped, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("skipped = %v, want none", skipped)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2 (.jsonl only)", len(sessions))
	}

	forks := analysis.FindForks(Headers(sessions))
	if len(forks) != 1 {
		t.Fatalf("forks = %d, want 1", len(forks))
	}
	if forks[0].ParentPath != "root.jsonl" || forks[0].ChildPath != "child.jsonl" || forks[0].ChildSessionID != "s-child" {
		t.Fatalf("fork = %+v", forks[0])
	}
}
