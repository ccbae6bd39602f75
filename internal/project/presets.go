package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/asergeenko/evalayout/internal/model"
	"github.com/google/uuid"
)

// InventoryPreset is a named, reusable sheets_inventory list, so an
// operator can save a mill's usual stock mix and reload it per run.
type InventoryPreset struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Sheets []model.SheetSpec `json:"sheets"`
}

// InventoryPresetStore is the on-disk collection of presets.
type InventoryPresetStore struct {
	Presets []InventoryPreset `json:"presets"`
}

// NewInventoryPreset assigns a fresh id to a named sheet list.
func NewInventoryPreset(name string, sheets []model.SheetSpec) InventoryPreset {
	return InventoryPreset{ID: uuid.New().String()[:8], Name: name, Sheets: sheets}
}

// defaultPresetDir returns ~/.evalayout, creating it if necessary.
func defaultPresetDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".evalayout")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// DefaultInventoryPresetPath returns the default path for the
// inventory-preset store.
func DefaultInventoryPresetPath() (string, error) {
	dir, err := defaultPresetDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "inventory_presets.json"), nil
}

// LoadInventoryPresets reads the preset store from path, returning an
// empty store if the file does not yet exist.
func LoadInventoryPresets(path string) (InventoryPresetStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return InventoryPresetStore{}, nil
		}
		return InventoryPresetStore{}, err
	}
	var store InventoryPresetStore
	if err := json.Unmarshal(data, &store); err != nil {
		return InventoryPresetStore{}, err
	}
	return store, nil
}

// SaveInventoryPresets writes the preset store to path.
func SaveInventoryPresets(path string, store InventoryPresetStore) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// AddOrReplace inserts preset, replacing any existing entry with the
// same name.
func (s *InventoryPresetStore) AddOrReplace(preset InventoryPreset) {
	for i, p := range s.Presets {
		if p.Name == preset.Name {
			s.Presets[i] = preset
			return
		}
	}
	s.Presets = append(s.Presets, preset)
}

// Find returns the preset named name, if present.
func (s InventoryPresetStore) Find(name string) (InventoryPreset, bool) {
	for _, p := range s.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return InventoryPreset{}, false
}
