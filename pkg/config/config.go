// Package config resolves where the corpus lives and how long to learn.
package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultCycles     = 200
	DefaultCandidates = 25
	// EnvPrefix prefixes every environment variable read by Resolve.
	EnvPrefix = "WORDBREAKER_"
)

// ErrMissing is returned when a required value is still empty after every
// source has been consulted and no prompt is available.
var ErrMissing = errors.New("missing configuration value")

// Config holds the resolved settings.
type Config struct {
	Language   string `json:"language"`
	Corpus     string `json:"corpus"`
	Datafolder string `json:"datafolder"`
	Cycles     int    `json:"cycles,omitempty"`
	Candidates int    `json:"candidates,omitempty"`
	// Verbose is nil when no source set it.
	Verbose *bool `json:"verbose,omitempty"`
}

// Trace reports whether the parse trace was requested.
func (c Config) Trace() bool {
	return c.Verbose != nil && *c.Verbose
}

// CorpusPath is <datafolder>/<language>/<corpus>.
func (c Config) CorpusPath() string {
	return filepath.Join(c.Datafolder, c.Language, c.Corpus)
}

// Resolver fills in a Config from several sources. Each empty field is
// taken from the first source that has it: the command line, the JSON
// config file, the environment (a .env file is read but never overrides
// the process environment), and finally an interactive prompt.
type Resolver struct {
	// ConfigPath defaults to config.json.
	ConfigPath string
	// EnvFile defaults to .env. A missing file is ignored.
	EnvFile string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// In and Out drive the prompt. A nil In disables prompting.
	In  io.Reader
	Out io.Writer
}

// NewResolver returns a Resolver that prompts on stdin.
func NewResolver() *Resolver {
	return &Resolver{In: os.Stdin, Out: os.Stdout}
}

// Resolve completes cli and writes language, corpus and datafolder back to
// the config file when anything was given on the command line or typed at
// the prompt. Other keys already in the file are kept.
func (r *Resolver) Resolve(cli Config) (Config, error) {
	cfg := cli
	dirty := cli.Language != "" || cli.Corpus != "" || cli.Datafolder != ""

	file, err := r.readFile()
	if err != nil {
		return cfg, err
	}
	fill(&cfg, file)

	fill(&cfg, r.fromEnv())

	if cfg.Cycles <= 0 {
		cfg.Cycles = DefaultCycles
	}
	if cfg.Candidates <= 0 {
		cfg.Candidates = DefaultCandidates
	}

	prompted, err := r.prompt(&cfg)
	if err != nil {
		return cfg, err
	}
	if dirty || prompted {
		if err := r.write(cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func fill(dst *Config, src Config) {
	if dst.Language == "" {
		dst.Language = src.Language
	}
	if dst.Corpus == "" {
		dst.Corpus = src.Corpus
	}
	if dst.Datafolder == "" {
		dst.Datafolder = src.Datafolder
	}
	if dst.Cycles <= 0 {
		dst.Cycles = src.Cycles
	}
	if dst.Candidates <= 0 {
		dst.Candidates = src.Candidates
	}
	if dst.Verbose == nil {
		dst.Verbose = src.Verbose
	}
}

func (r *Resolver) configPath() string {
	if r.ConfigPath == "" {
		return "config.json"
	}
	return r.ConfigPath
}

func (r *Resolver) readFile() (Config, error) {
	var cfg Config
	data, err := os.ReadFile(r.configPath())
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", r.configPath(), err)
	}
	return cfg, nil
}

func (r *Resolver) fromEnv() Config {
	envFile := r.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil {
		dotenv = map[string]string{}
	}
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	get := func(name string) string {
		key := EnvPrefix + name
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	atoi := func(name string) int {
		n, err := strconv.Atoi(strings.TrimSpace(get(name)))
		if err != nil {
			return 0
		}
		return n
	}
	var verbose *bool
	if v := strings.ToLower(strings.TrimSpace(get("VERBOSE"))); v != "" {
		on := v == "true" || v == "1" || v == "yes"
		verbose = &on
	}
	return Config{
		Language:   get("LANGUAGE"),
		Corpus:     get("CORPUS"),
		Datafolder: get("DATAFOLDER"),
		Cycles:     atoi("CYCLES"),
		Candidates: atoi("CANDIDATES"),
		Verbose:    verbose,
	}
}

func (r *Resolver) prompt(cfg *Config) (bool, error) {
	fields := []struct {
		label string
		dst   *string
	}{
		{"Enter language name: ", &cfg.Language},
		{"Enter corpus filename: ", &cfg.Corpus},
		{"Enter datafolder relative path: ", &cfg.Datafolder},
	}
	var scanner *bufio.Scanner
	prompted := false
	for _, f := range fields {
		if *f.dst != "" {
			continue
		}
		if r.In == nil {
			return prompted, fmt.Errorf("%w: %s", ErrMissing, strings.TrimSuffix(strings.TrimPrefix(f.label, "Enter "), ": "))
		}
		if scanner == nil {
			scanner = bufio.NewScanner(r.In)
		}
		if r.Out != nil {
			fmt.Fprint(r.Out, f.label)
		}
		if !scanner.Scan() {
			return prompted, fmt.Errorf("%w: no input for %q", ErrMissing, strings.TrimSpace(f.label))
		}
		*f.dst = strings.TrimSpace(scanner.Text())
		if *f.dst == "" {
			return prompted, fmt.Errorf("%w: empty input for %q", ErrMissing, strings.TrimSpace(f.label))
		}
		prompted = true
	}
	return prompted, nil
}

func (r *Resolver) write(cfg Config) error {
	path := r.configPath()
	doc := map[string]interface{}{}
	if data, err := os.ReadFile(path); err == nil {
		// An unreadable file is replaced.
		_ = json.Unmarshal(data, &doc)
	}
	doc["language"] = cfg.Language
	doc["corpus"] = cfg.Corpus
	doc["datafolder"] = cfg.Datafolder

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
