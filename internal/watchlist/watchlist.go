// Package watchlist manages named symbol lists persisted as a flat JSON
// mapping. Every mutation is written straight to disk; there is no
// in-memory-only state.
package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bist-cli/internal/logger"
)

// DefaultList is always present and cannot be deleted.
const DefaultList = "default"

const fileName = "watchlists.json"

var (
	ErrDuplicateSymbol = errors.New("symbol already in watchlist")
	ErrSymbolNotFound  = errors.New("symbol not in watchlist")
	ErrListNotFound    = errors.New("watchlist not found")
	ErrListExists      = errors.New("watchlist already exists")
	ErrReservedList    = errors.New("default watchlist cannot be deleted")
)

// Store holds the named lists and their backing file.
type Store struct {
	path  string
	lists map[string][]string
	log   *logger.Logger
}

// Open loads the watchlist file from dir, starting fresh with an empty
// default list when the file is missing or unreadable.
func Open(dir string, log *logger.Logger) *Store {
	s := &Store{
		path:  filepath.Join(dir, fileName),
		lists: map[string][]string{DefaultList: {}},
		log:   log,
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn(context.Background(), "could not read watchlists, starting fresh", "error", err)
		}
		return s
	}

	var lists map[string][]string
	if err := json.Unmarshal(b, &lists); err != nil {
		log.Warn(context.Background(), "could not parse watchlists, starting fresh", "error", err)
		return s
	}

	s.lists = lists
	if _, ok := s.lists[DefaultList]; !ok {
		s.lists[DefaultList] = []string{}
	}
	return s
}

// save writes the whole mapping after every mutation.
func (s *Store) save() error {
	b, err := json.MarshalIndent(s.lists, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}

// NormalizeSymbol uppercases and trims a symbol; entries differing only in
// case are the same symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Add appends symbol to the named list, creating the list on demand.
// Duplicate symbols are rejected.
func (s *Store) Add(listName, symbol string) error {
	symbol = NormalizeSymbol(symbol)
	if _, ok := s.lists[listName]; !ok {
		s.lists[listName] = []string{}
	}
	for _, existing := range s.lists[listName] {
		if existing == symbol {
			return ErrDuplicateSymbol
		}
	}
	s.lists[listName] = append(s.lists[listName], symbol)
	return s.save()
}

// Remove deletes symbol from the named list.
func (s *Store) Remove(listName, symbol string) error {
	symbol = NormalizeSymbol(symbol)
	symbols, ok := s.lists[listName]
	if !ok {
		return ErrListNotFound
	}
	for i, existing := range symbols {
		if existing == symbol {
			s.lists[listName] = append(symbols[:i], symbols[i+1:]...)
			return s.save()
		}
	}
	return ErrSymbolNotFound
}

// Symbols returns the entries of a list in insertion order.
func (s *Store) Symbols(listName string) []string {
	symbols := s.lists[listName]
	out := make([]string, len(symbols))
	copy(out, symbols)
	return out
}

// Lists returns all list names, sorted, default first.
func (s *Store) Lists() []string {
	names := make([]string, 0, len(s.lists))
	for name := range s.lists {
		if name != DefaultList {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{DefaultList}, names...)
}

// Has reports whether a list exists.
func (s *Store) Has(listName string) bool {
	_, ok := s.lists[listName]
	return ok
}

// Create adds a new empty list.
func (s *Store) Create(listName string) error {
	listName = strings.TrimSpace(listName)
	if _, ok := s.lists[listName]; ok {
		return ErrListExists
	}
	s.lists[listName] = []string{}
	return s.save()
}

// Delete removes a list. The default list is reserved.
func (s *Store) Delete(listName string) error {
	if listName == DefaultList {
		return ErrReservedList
	}
	if _, ok := s.lists[listName]; !ok {
		return ErrListNotFound
	}
	delete(s.lists, listName)
	return s.save()
}

// Rename moves a list to a new name. The default list may be renamed; only
// its deletion is reserved, and an empty default takes its place.
func (s *Store) Rename(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	symbols, ok := s.lists[oldName]
	if !ok {
		return ErrListNotFound
	}
	if _, ok := s.lists[newName]; ok {
		return ErrListExists
	}
	s.lists[newName] = symbols
	delete(s.lists, oldName)
	if oldName == DefaultList {
		s.lists[DefaultList] = []string{}
	}
	return s.save()
}
