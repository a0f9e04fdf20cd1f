package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/flexireact/flexi/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "flexi.json"

	// DefaultPort is the default development server port.
	DefaultPort = 3000

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultOutput is the default build output directory.
	DefaultOutput = "dist"

	// DefaultRoutesDir is the default routes directory.
	DefaultRoutesDir = "app/routes"
)

// Config represents the complete flexi.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Port is the default server port (convenience field, also in Dev).
	Port int `json:"port,omitempty"`

	// Routes contains route scanning configuration.
	Routes RoutesConfig `json:"routes,omitempty"`

	// Static contains static file serving configuration.
	Static StaticConfig `json:"static,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Build contains static export configuration.
	Build BuildConfig `json:"build,omitempty"`

	// Deploy contains deployment configuration.
	Deploy DeployConfig `json:"deploy,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RoutesConfig contains route scanning configuration.
type RoutesConfig struct {
	// Dir is the path to the routes directory.
	Dir string `json:"dir,omitempty"`

	// Extensions lists the file extensions treated as route modules.
	Extensions []string `json:"extensions,omitempty"`
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing static files.
	Dir string `json:"dir,omitempty"`

	// Prefix is the URL prefix for static files (default: "/").
	Prefix string `json:"prefix,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// OpenBrowser opens the browser automatically on start.
	OpenBrowser bool `json:"openBrowser,omitempty"`

	// Watch contains paths to watch for changes.
	Watch []string `json:"watch,omitempty"`

	// Ignore contains patterns to ignore during watch.
	Ignore []string `json:"ignore,omitempty"`

	// HotReload enables browser reload on file changes.
	HotReload bool `json:"hotReload,omitempty"`
}

// BuildConfig contains static export settings.
type BuildConfig struct {
	// Output is the output directory for static exports.
	Output string `json:"output,omitempty"`
}

// DeployConfig contains deployment settings.
type DeployConfig struct {
	// Bucket is the S3 bucket to publish to.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is an optional key prefix inside the bucket.
	Prefix string `json:"prefix,omitempty"`

	// Region is the bucket's AWS region.
	Region string `json:"region,omitempty"`

	// Prune deletes remote objects that no longer exist locally.
	Prune bool `json:"prune,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Version: "0.1.0",
		Port:    DefaultPort,
		Routes: RoutesConfig{
			Dir:        DefaultRoutesDir,
			Extensions: []string{".go"},
		},
		Static: StaticConfig{
			Dir:    "public",
			Prefix: "/",
		},
		Dev: DevConfig{
			Port:      DefaultPort,
			Host:      DefaultHost,
			HotReload: true,
			Watch:     []string{"app", "public"},
		},
		Build: BuildConfig{
			Output: DefaultOutput,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for flexi.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("F201").
				WithDetail("No flexi.json found in " + filepath.Dir(path)).
				WithSuggestion("Create a flexi.json at the project root")
		}
		return nil, errors.New("F200").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("F200").
			WithDetail("Failed to parse flexi.json: " + err.Error()).
			WithSuggestion("Check that flexi.json is valid JSON").
			WithFile(path)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("F200").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("F200").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = c.Port
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Watch == nil {
		c.Dev.Watch = []string{"app", "public"}
	}

	if c.Routes.Dir == "" {
		c.Routes.Dir = DefaultRoutesDir
	}
	if len(c.Routes.Extensions) == 0 {
		c.Routes.Extensions = []string{".go"}
	}

	if c.Build.Output == "" {
		c.Build.Output = DefaultOutput
	}

	if c.Static.Dir == "" {
		c.Static.Dir = "public"
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("F202").
			WithDetail("Port must be between 0 and 65535, got " + strconv.Itoa(c.Dev.Port))
	}
	return nil
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// RoutesPath returns the absolute path to the routes directory.
func (c *Config) RoutesPath() string {
	return c.abs(c.Routes.Dir)
}

// PublicPath returns the absolute path to the public directory.
func (c *Config) PublicPath() string {
	return c.abs(c.Static.Dir)
}

// OutputPath returns the absolute path to the build output directory.
func (c *Config) OutputPath() string {
	return c.abs(c.Build.Output)
}

// StaticPrefix returns the URL prefix for static files.
func (c *Config) StaticPrefix() string {
	if c.Static.Prefix == "" {
		return "/"
	}
	return c.Static.Prefix
}

func (c *Config) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing flexi.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("F201").
				WithDetail("No flexi.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the nearest project root at or
// above the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
