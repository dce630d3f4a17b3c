package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// IOPort labels one physical jack on the MB-76 rear panel.
type IOPort struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MIDISettings holds how we reach the patchbay.
type MIDISettings struct {
	Device  string `json:"device"`  // Output port name, empty until one is chosen
	Channel int    `json:"channel"` // 1-16
}

// MB76Settings holds the user's labels for the patchbay's jacks. Ports
// are only ever relabeled, never added or removed, so the counts are
// fixed by the hardware.
type MB76Settings struct {
	Inputs  []IOPort `json:"inputs"`
	Outputs []IOPort `json:"outputs"`
}

// ServerSettings holds the HTTP listen address.
type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Config holds application configuration.
type Config struct {
	AppName string         `json:"app_name"`
	Version string         `json:"version"`
	MIDI    MIDISettings   `json:"midi"`
	MB76    MB76Settings   `json:"mb76"`
	Server  ServerSettings `json:"server"`
}

const (
	defaultInputs  = 7
	defaultOutputs = 6
)

// Default returns the configuration used when none has been saved yet.
func Default() *Config {
	return &Config{
		AppName: "MB-76 Patchbay Controller",
		Version: "1.0.0",
		MIDI:    MIDISettings{Channel: 1},
		MB76: MB76Settings{
			Inputs:  defaultPorts("Input", defaultInputs),
			Outputs: defaultPorts("Output", defaultOutputs),
		},
		Server: ServerSettings{Host: "127.0.0.1", Port: 5000},
	}
}

func defaultPorts(prefix string, count int) []IOPort {
	ports := make([]IOPort, count)
	for i := range ports {
		ports[i] = IOPort{ID: i + 1, Name: fmt.Sprintf("%s %d", prefix, i+1)}
	}
	return ports
}

// DefaultDir returns the platform-appropriate config directory.
func DefaultDir() (string, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configHome, "digital-patchbay"), nil
}

// Load reads the config from disk, returning defaults if not found.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return &cfg, nil
}

// normalize fills in anything a hand-edited or older config file left
// out, so the rest of the app never sees zero values.
func (c *Config) normalize() {
	def := Default()
	if c.AppName == "" {
		c.AppName = def.AppName
	}
	if c.Version == "" {
		c.Version = def.Version
	}
	if c.MIDI.Channel < 1 || c.MIDI.Channel > 16 {
		c.MIDI.Channel = def.MIDI.Channel
	}
	if len(c.MB76.Inputs) == 0 {
		c.MB76.Inputs = def.MB76.Inputs
	}
	if len(c.MB76.Outputs) == 0 {
		c.MB76.Outputs = def.MB76.Outputs
	}
	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
}

// Save writes the config to disk.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) clone() Config {
	cc := *c
	cc.MB76.Inputs = append([]IOPort(nil), c.MB76.Inputs...)
	cc.MB76.Outputs = append([]IOPort(nil), c.MB76.Outputs...)
	return cc
}

// Store serializes access to the process-wide configuration and keeps
// the file on disk in step with it.
type Store struct {
	mu   sync.RWMutex
	cfg  *Config
	path string
}

// NewStore loads the config at path, falling back to defaults when the
// file does not exist yet.
func NewStore(path string) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &Store{cfg: cfg, path: path}, nil
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.clone()
}

// Update applies fn to the configuration and persists the result. The
// change is durable by the time Update returns.
func (s *Store) Update(fn func(*Config)) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg.clone()
	fn(&next)
	if err := next.Save(s.path); err != nil {
		return Config{}, fmt.Errorf("failed to save config: %w", err)
	}
	s.cfg = &next
	return next.clone(), nil
}

// Flush writes the current configuration to disk. Called at shutdown so
// defaults that were never explicitly saved end up on disk too.
func (s *Store) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Save(s.path)
}
