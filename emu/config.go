package emu

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"micro65/emu/log"
)

type Config struct {
	Emulation EmulationConfig `toml:"emulation"`
	Clock     ClockConfig     `toml:"clock"`
}

type EmulationConfig struct {
	// UseCarry makes ADC include the carry flag in its sum.
	UseCarry bool `toml:"use_carry"`

	// Debug enables diagnostic logging for all modules.
	Debug bool `toml:"debug"`
}

type ClockConfig struct {
	// PeriodUS is the clock period in microseconds.
	PeriodUS int `toml:"period_us"`
}

// The default period keeps a full instruction (5 to 11 ticks, more for a
// SYS string print) at about a millisecond or less while leaving log output
// readable.
const defaultPeriodUS = 100

func (c ClockConfig) Period() time.Duration {
	us := c.PeriodUS
	if us <= 0 {
		us = defaultPeriodUS
	}
	return time.Duration(us) * time.Microsecond
}

var ConfigDir string = sync.OnceValue(func() string {
	dir := configdir.LocalConfig("micro65")
	if err := configdir.MakePath(dir); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})()

const cfgFilename = "config.toml"

// LoadConfigOrDefault loads the configuration from the micro65 config
// directory, or provides a default one.
func LoadConfigOrDefault() Config {
	var cfg Config
	_, err := toml.DecodeFile(filepath.Join(ConfigDir, cfgFilename), &cfg)
	if err != nil {
		return Config{}
	}
	return cfg
}

// SaveConfig into the micro65 config directory.
func SaveConfig(cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(ConfigDir, cfgFilename), buf, 0644)
}
