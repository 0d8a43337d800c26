package sai

// Config holds the tunables a caller can load from YAML alongside their
// table configuration: a small struct of plain fields with yaml tags, no
// framework behind it.
type Config struct {
	// Mode selects ORIGINAL, SUFFIX, or SPARSE packing.
	Mode string `yaml:"mode"`
	// MaxTermSize overrides MaxTermSize when positive; 0 keeps the default.
	MaxTermSize int `yaml:"max_term_size"`
}

// DefaultConfig returns the package defaults.
func DefaultConfig() Config {
	return Config{Mode: "ORIGINAL"}
}

// ResolvedMode parses Mode, defaulting to Original for an empty string.
func (c Config) ResolvedMode() (Mode, error) {
	if c.Mode == "" {
		return Original, nil
	}
	return ParseMode(c.Mode)
}

// ResolvedMaxTermSize returns MaxTermSize when positive, else the
// package default. Pass the result to WithMaxTermSize.
func (c Config) ResolvedMaxTermSize() int {
	if c.MaxTermSize > 0 {
		return c.MaxTermSize
	}
	return MaxTermSize
}
