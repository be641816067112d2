// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/Makepad-fr/tada/internal/ui"
)

// Source records where a configuration value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "config file"
	SourceDotenv  Source = ".env"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

// Default values.
const (
	DefaultAPIURL    = "https://jsonplaceholder.typicode.com"
	DefaultTimeout   = 10 * time.Second
	DefaultTheme     = "classic"
	DefaultUsers     = 10
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DirName          = ".tada"
	FileName         = "config.toml"
	LogFileName      = "tada.log"
)

// Environment variables.
const (
	EnvAPIURL   = "TADA_API_URL"
	EnvTimeout  = "TADA_TIMEOUT"
	EnvTheme    = "TADA_THEME"
	EnvUsers    = "TADA_USERS"
	EnvLogLevel = "TADA_LOG_LEVEL"
	EnvLogFile  = "TADA_LOG_FILE"
	EnvTrace    = "TADA_TRACE_FILE"
	EnvConfig   = "TADA_CONFIG"
)

// Config holds the full configuration for tada.
type Config struct {
	APIURL    string        `toml:"api_url"`
	Timeout   time.Duration `toml:"timeout"`
	Theme     string        `toml:"theme"`
	Users     int           `toml:"users"`
	LogLevel  string        `toml:"log_level"`
	LogFormat string        `toml:"log_format"`
	LogFile   string        `toml:"log_file"`
	TraceFile string        `toml:"trace_file"`
}

// Flags are command-line overrides. Empty strings are unset.
type Flags struct {
	ConfigPath string
	APIURL     string
	Theme      string
	LogLevel   string
	TraceFile  string
}

// Loaded is a Config with the source of every field and the merged
// environment (process env over .env) it was resolved against.
type Loaded struct {
	*Config
	Sources  map[string]Source
	File     string
	dotenv   map[string]string
	lookupFn func(string) (string, bool)
}

// Getenv returns key from the process environment, then from .env.
func (l *Loaded) Getenv(key string) string {
	if v, ok := l.lookupFn(key); ok {
		return v
	}
	return l.dotenv[key]
}

// Options control where Load looks. Zero values use the defaults.
type Options struct {
	Dir     string // defaults to ~/.tada
	EnvFile string // defaults to ./.env
	Lookup  func(string) (string, bool)
	Flags   Flags
}

// Dir returns ~/.tada.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Load resolves defaults, the config file, .env, the environment and
// flags, in that order.
func Load(opts Options) (*Loaded, error) {
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}
	if opts.EnvFile == "" {
		opts.EnvFile = ".env"
	}
	if opts.Dir == "" {
		d, err := Dir()
		if err != nil {
			return nil, err
		}
		opts.Dir = d
	}

	l := &Loaded{
		Config:   &Config{},
		Sources:  map[string]Source{},
		lookupFn: opts.Lookup,
	}
	setDefaults(l, opts.Dir)

	dotenv, err := godotenv.Read(opts.EnvFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", opts.EnvFile, err)
	}
	l.dotenv = dotenv

	path := opts.Flags.ConfigPath
	if path == "" {
		path = l.Getenv(EnvConfig)
	}
	explicit := path != ""
	if !explicit {
		path = filepath.Join(opts.Dir, FileName)
	}
	if err := loadFile(l, path, explicit); err != nil {
		return nil, err
	}

	if err := applyEnv(l, SourceDotenv, func(k string) (string, bool) {
		v, ok := dotenv[k]
		return v, ok
	}); err != nil {
		return nil, err
	}
	if err := applyEnv(l, SourceEnv, opts.Lookup); err != nil {
		return nil, err
	}
	applyFlags(l, opts.Flags)

	if err := validate(l.Config); err != nil {
		return nil, err
	}
	return l, nil
}

func setDefaults(l *Loaded, dir string) {
	l.APIURL = DefaultAPIURL
	l.Timeout = DefaultTimeout
	l.Theme = DefaultTheme
	l.Users = DefaultUsers
	l.LogLevel = DefaultLogLevel
	l.LogFormat = DefaultLogFormat
	l.LogFile = filepath.Join(dir, LogFileName)
	for _, f := range fields() {
		l.Sources[f] = SourceDefault
	}
}

func loadFile(l *Loaded, path string, required bool) error {
	var fc Config
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config %s: %w", path, err)
	}
	l.File = path
	set := func(key string, apply func()) {
		if md.IsDefined(key) {
			apply()
			l.Sources[key] = SourceFile
		}
	}
	set("api_url", func() { l.APIURL = fc.APIURL })
	set("timeout", func() { l.Timeout = fc.Timeout })
	set("theme", func() { l.Theme = fc.Theme })
	set("users", func() { l.Users = fc.Users })
	set("log_level", func() { l.LogLevel = fc.LogLevel })
	set("log_format", func() { l.LogFormat = fc.LogFormat })
	set("log_file", func() { l.LogFile = expandHome(fc.LogFile) })
	set("trace_file", func() { l.TraceFile = expandHome(fc.TraceFile) })
	if und := md.Undecoded(); len(und) > 0 {
		return fmt.Errorf("config %s: unknown keys %v", path, und)
	}
	return nil
}

func applyEnv(l *Loaded, src Source, lookup func(string) (string, bool)) error {
	str := func(env, key string, dst *string) {
		if v, ok := lookup(env); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
			l.Sources[key] = src
		}
	}
	str(EnvAPIURL, "api_url", &l.APIURL)
	str(EnvTheme, "theme", &l.Theme)
	str(EnvLogLevel, "log_level", &l.LogLevel)
	str(EnvLogFile, "log_file", &l.LogFile)
	str(EnvTrace, "trace_file", &l.TraceFile)

	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		l.Timeout = d
		l.Sources["timeout"] = src
	}
	if v, ok := lookup(EnvUsers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: not a number: %s", EnvUsers, v)
		}
		l.Users = n
		l.Sources["users"] = src
	}
	return nil
}

func applyFlags(l *Loaded, f Flags) {
	str := func(v, key string, dst *string) {
		if v != "" {
			*dst = v
			l.Sources[key] = SourceFlag
		}
	}
	str(f.APIURL, "api_url", &l.APIURL)
	str(f.Theme, "theme", &l.Theme)
	str(f.LogLevel, "log_level", &l.LogLevel)
	str(f.TraceFile, "trace_file", &l.TraceFile)
}

func validate(c *Config) error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	if c.Users < 0 {
		return fmt.Errorf("users must not be negative: %d", c.Users)
	}
	known := false
	for _, n := range ui.ThemeNames() {
		if strings.EqualFold(n, c.Theme) {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unknown theme %q (want one of %s)", c.Theme, strings.Join(ui.ThemeNames(), ", "))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("unknown log format %q (want text|json|logfmt)", c.LogFormat)
	}
	return nil
}

func fields() []string {
	return []string{"api_url", "timeout", "theme", "users", "log_level", "log_format", "log_file", "trace_file"}
}

// Describe lists "key = value (source)" lines, sorted by key.
func (l *Loaded) Describe() []string {
	values := map[string]string{
		"api_url":    l.APIURL,
		"timeout":    l.Timeout.String(),
		"theme":      l.Theme,
		"users":      strconv.Itoa(l.Users),
		"log_level":  l.LogLevel,
		"log_format": l.LogFormat,
		"log_file":   l.LogFile,
		"trace_file": l.TraceFile,
	}
	keys := fields()
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s = %q (%s)", k, values[k], l.Sources[k]))
	}
	return out
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
