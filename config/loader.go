package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvConfigFile names the environment variable that points at an explicit
// config file and short-circuits the search.
const EnvConfigFile = "ASRDASH_CONFIG"

// FileSystem abstracts the file lookups done while resolving config files.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using the operating system.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds the config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths when provided, otherwise searches the
// standard locations relative to the working directory.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = os.Getenv(EnvConfigFile)
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(configSearchPaths(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(envSearchPaths(serviceName))
	}
	return resolved
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

func configSearchPaths(serviceName string) []string {
	return []string{
		fmt.Sprintf("./cmd/%s/config.yml", serviceName),
		fmt.Sprintf("../cmd/%s/config.yml", serviceName),
		fmt.Sprintf("../../cmd/%s/config.yml", serviceName),
		"./config/config.yml",
		"./config.yml",
	}
}

func envSearchPaths(serviceName string) []string {
	var paths []string
	for _, name := range []string{".env." + serviceName, ".env"} {
		for _, dir := range []string{fmt.Sprintf("./cmd/%s", serviceName), ".", "..", "../.."} {
			paths = append(paths, dir+"/"+name)
		}
	}
	return paths
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads configuration for a service into cfg. The YAML file is the
// base layer; the .env file and the process environment override it.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)

	v := viper.New()
	if files.ConfigFile != "" {
		if !lc.FileSystem.Exists(files.ConfigFile) {
			return fmt.Errorf("config file %s does not exist", files.ConfigFile)
		}
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", files.ConfigFile, err)
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", files.EnvFile, err)
		}
	}
	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv overrides keys already known to viper with matching environment
// variables. Only keys present in the config file are considered, so
// unrelated variables such as PATH never leak into the config tree.
func bindEnv(v *viper.Viper, environ []string) {
	known := make(map[string]bool)
	for _, k := range v.AllKeys() {
		known[k] = true
	}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			if known[variant] {
				v.Set(variant, value)
			}
		}
	}
}

// envKeyVariants lists the nested keys an environment variable may address:
// EVALUATION_MAX_CONCURRENT -> evaluation_max_concurrent,
// evaluation.max.concurrent, evaluation.max_concurrent, evaluation_max.concurrent.
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	variants := []string{lower, strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
		variants = append(variants, strings.Join(parts[:i], "_")+"."+strings.Join(parts[i:], "."))
	}

	seen := make(map[string]bool, len(variants))
	out := variants[:0]
	for _, v := range variants {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
