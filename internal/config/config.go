// Package config loads solobfus's run configuration, mirroring (in
// shape, not content) the teacher's internal/config package: a
// defaults-first struct, optional project file, CLI-flag merge that
// only overrides an explicitly-set flag (merge.go's MergeString /
// MergeBool idiom), loaded with github.com/spf13/viper.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Config holds one obfuscation run's settings.
type Config struct {
	Jobs           []string `mapstructure:"jobs" yaml:"jobs" toml:"jobs"`
	Output         string   `mapstructure:"output" yaml:"output" toml:"output"`
	Verbose        bool     `mapstructure:"verbose" yaml:"verbose" toml:"verbose"`
	SolcPath       string   `mapstructure:"solc_path" yaml:"solc_path" toml:"solc_path"`
	Seed           *int64   `mapstructure:"seed" yaml:"seed" toml:"seed"`
	JunkStatements int      `mapstructure:"junk_statements" yaml:"junk_statements" toml:"junk_statements"`
}

// DefaultConfig returns the built-in defaults (lowest priority in the
// load chain).
func DefaultConfig() *Config {
	return &Config{
		Jobs:           nil,
		Output:         "",
		Verbose:        false,
		SolcPath:       "solc",
		Seed:           nil,
		JunkStatements: 4,
	}
}

// Load resolves the effective Config: built-in defaults, then an
// optional project file (`.solobfus.toml` parsed with go-toml/v2,
// `.solobfus.yaml` parsed by viper's native codec), then flags
// (applied by the caller via Merge).
//
// path may name a file directly or a directory to search; an empty
// path searches the current directory.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	file, err := findProjectFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if file == "" {
		return cfg, nil
	}

	if strings.HasSuffix(file, ".toml") {
		if err := loadToml(file, cfg); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", file, err)
		}
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: loading %s: %w", file, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", file, err)
	}
	return cfg, nil
}

func loadToml(file string, cfg *Config) error {
	data, err := readFile(file)
	if err != nil {
		return err
	}
	return toml.Unmarshal(data, cfg)
}

// findProjectFile looks for .solobfus.toml then .solobfus.yaml,
// starting from path (or the current directory if path is empty).
func findProjectFile(path string) (string, error) {
	dir, err := searchDir(path)
	if err != nil {
		return "", err
	}
	for _, name := range []string{".solobfus.toml", ".solobfus.yaml", ".solobfus.yml"} {
		candidate := filepath.Join(dir, name)
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

// Merge applies CLI-flag overrides onto base, but only for flags the
// caller marked as explicitly set — mirroring the teacher's
// WasExplicitlySet gate in internal/config/merge.go.
func Merge(base *Config, override *Config, set map[string]bool) *Config {
	out := *base
	if set["jobs"] && len(override.Jobs) > 0 {
		out.Jobs = override.Jobs
	}
	if set["output"] {
		out.Output = override.Output
	}
	if set["verbose"] {
		out.Verbose = override.Verbose
	}
	if set["solc"] {
		out.SolcPath = override.SolcPath
	}
	if set["seed"] {
		out.Seed = override.Seed
	}
	if set["junk-statements"] {
		out.JunkStatements = override.JunkStatements
	}
	return &out
}

// KnownJobs is the closed set of pass names accepted by --jobs
// (spec.md §6).
var KnownJobs = map[string]bool{
	"cff":     true,
	"oconst":  true,
	"opredic": true,
	"dfo":     true,
	"rename":  true,
}

// Configuration reports an unknown --jobs pass name (spec.md §7).
// Rejected at argument-parsing time, before any compile or pass runs.
type Configuration struct {
	Msg string
}

func (e *Configuration) Error() string { return "configuration: " + e.Msg }

// ValidateJobs rejects any name outside the closed pass set.
func ValidateJobs(jobs []string) error {
	for _, j := range jobs {
		if !KnownJobs[j] {
			return &Configuration{Msg: fmt.Sprintf("unknown pass %q", j)}
		}
	}
	return nil
}

// OutputPath computes the default output path (input path with its
// extension replaced by .out.sol) when Output is unset.
func (c *Config) OutputPath(input string) string {
	if c.Output != "" {
		return c.Output
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".out.sol"
}
