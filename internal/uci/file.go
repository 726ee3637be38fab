package uci

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"
)

// FileSource reads the store by parsing a UCI config file directly
// (e.g. /etc/config/dhcp). Useful where the uci binary is unavailable
// and for tests. Ordinals follow file order of matching section types,
// the same order the uci CLI assigns to @host[i] references.
type FileSource struct {
	path string
	sel  Selector

	mu      sync.Mutex
	loaded  bool
	entries []fileEntry
}

// fileEntry is one matching section; hasOption mirrors the uci CLI,
// where a section missing the option resolves to absence at that index.
type fileEntry struct {
	hasOption bool
	value     string
}

// NewFileSource creates a file-backed source.
func NewFileSource(path string, sel Selector) *FileSource {
	return &FileSource{path: path, sel: sel}
}

// Lookup reads one ordinal entry from the parsed file.
func (s *FileSource) Lookup(ctx context.Context, index int) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		if err := s.load(); err != nil {
			return "", false, &SourceError{Op: "parse " + s.path, Err: err}
		}
		s.loaded = true
	}

	if index < 0 || index >= len(s.entries) {
		return "", false, nil
	}
	e := s.entries[index]
	if !e.hasOption || e.value == "" {
		return "", false, nil
	}
	return e.value, true, nil
}

// Reload discards the parsed state so the next Lookup re-reads the file.
func (s *FileSource) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.entries = nil
}

// load parses the UCI file. UCI format: "config <type> ['<name>']"
// section headers followed by "option <key> '<value>'" lines.
func (s *FileSource) load() error {
	file, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer file.Close()

	s.entries = nil
	inSection := false

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "config ") {
			parts := strings.Fields(line)
			inSection = len(parts) >= 2 && parts[1] == s.sel.Section
			if inSection {
				s.entries = append(s.entries, fileEntry{})
			}
			continue
		}

		if inSection && strings.HasPrefix(line, "option ") {
			key, value, ok := parseOption(line)
			if ok && key == s.sel.Option {
				cur := &s.entries[len(s.entries)-1]
				cur.hasOption = true
				cur.value = value
			}
		}
	}

	return scanner.Err()
}

// parseOption parses "option <key> '<value>'" (quotes optional).
func parseOption(line string) (key, value string, ok bool) {
	rest := strings.TrimPrefix(line, "option ")
	parts := strings.SplitN(rest, " ", 2)
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], strings.Trim(strings.TrimSpace(parts[1]), "'\""), true
}
