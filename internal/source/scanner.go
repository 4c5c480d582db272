// Package source discovers and parses JSONL record exports.
package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind is the record type held by an export file, taken from its file stem.
type Kind string

const (
	KindEvents       Kind = "events"
	KindShifts       Kind = "shifts"
	KindTasks        Kind = "tasks"
	KindAppointments Kind = "appointments"
	KindCards        Kind = "cards"
	KindPurchases    Kind = "purchases"
	KindLedger       Kind = "ledger"
	KindHabits       Kind = "habits"
	KindDevotionals  Kind = "devotionals"
	KindCompletions  Kind = "completions"
)

var knownKinds = map[Kind]bool{
	KindEvents: true, KindShifts: true, KindTasks: true, KindAppointments: true,
	KindCards: true, KindPurchases: true, KindLedger: true, KindHabits: true,
	KindDevotionals: true, KindCompletions: true,
}

// DiscoveredFile is an export file found during directory scanning.
type DiscoveredFile struct {
	Path string
	Kind Kind
	// User is the first directory below the export root, used for records
	// that carry no user_id. Empty for files at the root.
	User string
}

// ScanDir walks dir and discovers every export file. Files are recognised by
// their stem: "shifts.jsonl" and "shifts-2025.jsonl" both hold shifts.
// Unknown stems are skipped. A missing dir yields no files.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() || filepath.Ext(path) != ".jsonl" {
			return nil
		}

		kind, ok := KindOf(d.Name())
		if !ok {
			return nil
		}

		df := DiscoveredFile{Path: path, Kind: kind}
		rel, _ := filepath.Rel(dir, path)
		if parts := strings.Split(rel, string(filepath.Separator)); len(parts) >= 2 {
			df.User = parts[0]
		}
		files = append(files, df)
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// KindOf maps a file name to its record kind.
func KindOf(name string) (Kind, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.IndexAny(stem, "-_."); i > 0 {
		stem = stem[:i]
	}
	k := Kind(strings.ToLower(stem))
	return k, knownKinds[k]
}

// CountUsers returns the number of distinct user directories in a set of files.
func CountUsers(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		if f.User != "" {
			seen[f.User] = struct{}{}
		}
	}
	return len(seen)
}
