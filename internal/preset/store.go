package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/s0wingseason/Digital-Patchbay/internal/routing"
)

var (
	// ErrNotFound is returned when no preset has the requested ID or bank.
	ErrNotFound = errors.New("preset not found")

	// ErrEmptyName rejects presets whose name is empty or whitespace.
	ErrEmptyName = errors.New("preset name must not be empty")

	// ErrBankOutOfRange rejects bank numbers outside 1-32.
	ErrBankOutOfRange = errors.New("bank number out of range (1-32)")
)

const maxBank = 32

// Recaller sends a bank recall to the patchbay. Satisfied by
// *midi.Engine.
type Recaller interface {
	RecallBank(bank int) error
}

// Update carries the fields of a preset update. Nil pointers leave the
// corresponding field unchanged; a non-nil RoutingMatrix replaces the
// stored matrix wholesale.
type Update struct {
	Name          *string
	BankNumber    *int
	Description   *string
	RoutingMatrix map[int][]int
}

// Store keeps presets in memory and mirrors every change to one JSON
// file per preset under its directory. A write that fails leaves the
// in-memory state untouched.
type Store struct {
	mu       sync.RWMutex
	dir      string
	presets  map[string]*Preset
	recaller Recaller
	model    *routing.Model
}

// NewStore loads every preset file under dir, creating the directory if
// needed. Files that fail to parse are skipped with a warning so one
// corrupt preset cannot take the rest down.
func NewStore(dir string, recaller Recaller, model *routing.Model) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create preset directory: %w", err)
	}

	s := &Store{
		dir:      dir,
		presets:  make(map[string]*Preset),
		recaller: recaller,
		model:    model,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logrus.Warnf("Skipping preset file %s: %v", entry.Name(), err)
			continue
		}
		var p Preset
		if err := json.Unmarshal(data, &p); err != nil {
			logrus.Warnf("Skipping preset file %s: %v", entry.Name(), err)
			continue
		}
		if p.ID == "" {
			logrus.Warnf("Skipping preset file %s: missing id", entry.Name())
			continue
		}
		s.presets[p.ID] = &p
	}

	logrus.Infof("Loaded %d presets from %s", len(s.presets), dir)
	return s, nil
}

// List returns summaries of every preset, ordered by bank number and
// then by name.
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

func (s *Store) listLocked() []Summary {
	summaries := make([]Summary, 0, len(s.presets))
	for _, p := range s.presets {
		summaries = append(summaries, p.summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].BankNumber != summaries[j].BankNumber {
			return summaries[i].BankNumber < summaries[j].BankNumber
		}
		return summaries[i].Name < summaries[j].Name
	})
	return summaries
}

// Get returns a copy of the preset with the given ID.
func (s *Store) Get(id string) (Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.presets[id]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p.clone(), nil
}

// GetByBank returns the first preset assigned to the given bank, in
// List order. Several presets may share a bank; the caller gets the
// same one every time.
func (s *Store) GetByBank(bank int) (Preset, error) {
	if bank < 1 || bank > maxBank {
		return Preset{}, fmt.Errorf("%w: %d", ErrBankOutOfRange, bank)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, summary := range s.listLocked() {
		if summary.BankNumber == bank {
			return s.presets[summary.ID].clone(), nil
		}
	}
	return Preset{}, fmt.Errorf("%w: no preset for bank %d", ErrNotFound, bank)
}

// Create validates and stores a new preset. The name is trimmed and
// must not end up empty; the bank must be 1-32.
func (s *Store) Create(name string, bank int, description string, matrix map[int][]int) (Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Preset{}, ErrEmptyName
	}
	if bank < 1 || bank > maxBank {
		return Preset{}, fmt.Errorf("%w: %d", ErrBankOutOfRange, bank)
	}

	now := time.Now()
	p := &Preset{
		ID:            uuid.New().String(),
		Name:          name,
		BankNumber:    bank,
		Description:   description,
		RoutingMatrix: cloneMatrix(matrix),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveLocked(p); err != nil {
		return Preset{}, err
	}
	s.presets[p.ID] = p
	logrus.Infof("Created preset %q (bank %d)", p.Name, p.BankNumber)
	return p.clone(), nil
}

// Update applies the given changes to a preset. ID and creation time
// never change; a failed validation or write leaves the stored preset
// as it was.
func (s *Store) Update(id string, upd Update) (Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.presets[id]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := existing.clone()
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return Preset{}, ErrEmptyName
		}
		next.Name = name
	}
	if upd.BankNumber != nil {
		if *upd.BankNumber < 1 || *upd.BankNumber > maxBank {
			return Preset{}, fmt.Errorf("%w: %d", ErrBankOutOfRange, *upd.BankNumber)
		}
		next.BankNumber = *upd.BankNumber
	}
	if upd.Description != nil {
		next.Description = *upd.Description
	}
	if upd.RoutingMatrix != nil {
		next.RoutingMatrix = cloneMatrix(upd.RoutingMatrix)
	}
	next.UpdatedAt = time.Now()

	if err := s.saveLocked(&next); err != nil {
		return Preset{}, err
	}
	s.presets[id] = &next
	return next.clone(), nil
}

// Delete removes a preset and its file. The deletion is permanent;
// there is no undo.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.presets[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete preset file: %w", err)
	}
	delete(s.presets, id)
	logrus.Infof("Deleted preset %q", p.Name)
	return nil
}

// Recall sends the preset's bank to the patchbay, then loads its
// routing matrix into the live model. The matrix is only loaded after
// the hardware send succeeds, so a dead device never leaves the screen
// showing a routing the patchbay never switched to.
func (s *Store) Recall(id string) (Preset, error) {
	p, err := s.Get(id)
	if err != nil {
		return Preset{}, err
	}
	if err := s.recaller.RecallBank(p.BankNumber); err != nil {
		return Preset{}, err
	}
	s.model.LoadFrom(p.RoutingMatrix)
	logrus.Infof("Recalled preset %q (bank %d)", p.Name, p.BankNumber)
	return p, nil
}

// EnsureDefaults seeds one placeholder preset per hardware bank. Runs
// only when the store is completely empty, so user data is never mixed
// with generated placeholders.
func (s *Store) EnsureDefaults() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.presets) > 0 {
		return nil
	}
	for bank := 1; bank <= maxBank; bank++ {
		now := time.Now()
		p := &Preset{
			ID:          uuid.New().String(),
			Name:        fmt.Sprintf("Bank %d", bank),
			BankNumber:  bank,
			Description: fmt.Sprintf("Default preset for MB-76 Bank %d", bank),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.saveLocked(p); err != nil {
			return err
		}
		s.presets[p.ID] = p
	}
	logrus.Infof("Seeded %d default presets", maxBank)
	return nil
}

// Count returns the number of stored presets.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.presets)
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *Store) saveLocked(p *Preset) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preset: %w", err)
	}
	if err := os.WriteFile(s.path(p.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}
	return nil
}
