// Package logfile reads append-only session logs from disk. The analysis
// engine itself does no I/O; this package is the seam between files and
// the in-memory entry stream.
package logfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"sessionlens/internal/analysis"
)

// Session is one loaded log file: its header (if the file declared one),
// its parsed entries in file order, and a count of lines that did not
// parse. Malformed lines are skipped, never fatal — a partly readable log
// is still worth analyzing.
type Session struct {
	Path      string
	Header    analysis.SessionHeader
	Entries   []analysis.Entry
	Malformed int
}

// Load reads one JSONL session log. Only a structurally unreadable file
// (or a header that fails analysis.ErrBadHeader validation) is an error;
// individual bad lines are counted and dropped. Entries missing an id get
// a synthetic one so tree addressing stays total.
func Load(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()

	sess := &Session{Path: path, Header: analysis.SessionHeader{Path: path}}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, err := analysis.ParseEntry([]byte(line))
		if err != nil {
			sess.Malformed++
			continue
		}
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.Type == analysis.EntrySessionInfo {
			sess.Header = headerFrom(path, entry.SessionInfo)
		}
		sess.Entries = append(sess.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read session log: %w", err)
	}
	return sess, nil
}

// LoadDir loads every *.jsonl file directly under dir, sorted by path.
// Unreadable files are skipped with their paths reported, so one corrupt
// log cannot sink a batch.
func LoadDir(dir string) ([]*Session, []string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(paths)

	var sessions []*Session
	var skipped []string
	for _, p := range paths {
		sess, err := Load(p)
		if err != nil {
			skipped = append(skipped, p)
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, skipped, nil
}

// Headers extracts the session headers of a loaded batch, the input the
// fork resolver works over.
func Headers(sessions []*Session) []analysis.SessionHeader {
	headers := make([]analysis.SessionHeader, 0, len(sessions))
	for _, s := range sessions {
		headers = append(headers, s.Header)
	}
	return headers
}

func headerFrom(path string, info *analysis.SessionInfoPayload) analysis.SessionHeader {
	h := analysis.SessionHeader{
		Path:       info.Path,
		SessionID:  info.SessionID,
		ParentPath: info.ParentPath,
		ForkedAt:   info.ForkedAt,
	}
	if h.Path == "" {
		h.Path = path
	}
	return h
}
