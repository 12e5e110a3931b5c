package emulator

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/avmlang/avm/cpu"
)

// Config is the machine configuration, usually read from an avm.toml file.
type Config struct {
	MemorySize int               `toml:"memory_size"` // Bytes of main memory.
	Nvram      string            `toml:"nvram"`       // Path of the persistent store file.
	RandomFill bool              `toml:"random_fill"` // Fill unused memory with random bytes.
	Seed       uint64            `toml:"seed"`        // Random seed; 0 seeds from the clock.
	Verbose    bool              `toml:"verbose"`
	Defines    map[string]string `toml:"defines"` // Extra assembler constants.
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		MemorySize: cpu.MEMORY_DEFAULT,
		Nvram:      "nvr.bin",
		RandomFill: true,
	}
}

// LoadConfig reads a TOML configuration file. Keys missing from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (cfg Config, err error) {
	cfg = DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	err = cfg.Parse(string(data))
	if err != nil {
		err = fmt.Errorf("%s: %w", path, err)
	}

	return
}

// Parse overlays TOML text onto the configuration.
func (cfg *Config) Parse(text string) (err error) {
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return
	}

	undecoded := md.Undecoded()
	if len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for n, key := range undecoded {
			keys[n] = key.String()
		}
		err = fmt.Errorf("%w: %s", ErrConfigKey, strings.Join(keys, ", "))
		return
	}

	if cfg.MemorySize < 0 || cfg.MemorySize > cpu.MEMORY_MAX {
		err = cpu.ErrMemorySize
	}

	return
}
