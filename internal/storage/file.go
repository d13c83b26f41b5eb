package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tickd/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Layout: <prefix>.runs.jsonl, append-only JSON Lines. The retained window
// lives in memory; after every compactEvery appends the file is rewritten
// from that window so it cannot grow without bound.
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	path    string
	file    *os.File
	maxRuns int

	// runs holds the retained window, oldest first.
	runs   []Run
	writes int
}

const compactEvery = 500

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	runsPath := filepath.Join(dir, base) + ".runs.jsonl"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &fileStore{log: log, path: runsPath, maxRuns: cfg.maxRuns()}
	if err := s.replay(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	f, err := os.OpenFile(runsPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	s.file = f
	return s, nil
}

// replay loads the retained window from an earlier process. Damaged lines
// are skipped, not fatal.
func (s *fileStore) replay() error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var r Run
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		s.push(r)
	}
	return sc.Err()
}

// push appends to the window, evicting the oldest past maxRuns.
func (s *fileStore) push(r Run) {
	s.runs = append(s.runs, r)
	if over := len(s.runs) - s.maxRuns; over > 0 {
		s.runs = append(s.runs[:0], s.runs[over:]...)
	}
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *fileStore) AppendRun(ctx context.Context, r Run) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return errors.New("run store closed")
	}
	if err := json.NewEncoder(s.file).Encode(r); err != nil {
		return err
	}
	s.push(r)

	s.writes++
	if s.writes%compactEvery == 0 {
		// Best-effort rewrite; a failure only delays the next attempt.
		if err := s.compactLocked(); err != nil {
			s.log.Debug("run history compact failed", logx.Err(err))
		}
	}
	return nil
}

func (s *fileStore) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.runs)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Run, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.runs[i])
	}
	return out, nil
}

func (s *fileStore) Stats(ctx context.Context) (Stats, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	var st Stats
	st.Runs = len(s.runs)
	for _, r := range s.runs {
		if r.Failed() {
			st.Failed++
		}
	}
	if len(s.runs) > 0 {
		st.OldestAt = s.runs[0].At
		st.NewestAt = s.runs[len(s.runs)-1].At
	}
	return st, nil
}

// compactLocked rewrites the file from the retained window via a temp file
// and rename, then reopens the append handle.
func (s *fileStore) compactLocked() error {
	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	for _, r := range s.runs {
		if err := enc.Encode(r); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}

	old := s.file
	nf, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	s.file = nf
	return old.Close()
}
