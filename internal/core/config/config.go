package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yml"
	AppDirName     = "vlsetup"
)

// Torch flavor values for the "torch" config key.
const (
	TorchAuto = "auto"
	TorchCUDA = "cuda"
	TorchCPU  = "cpu"
)

// ConfigDir returns the standard config directory for vlsetup.
// Windows: %APPDATA%\vlsetup\
// macOS/Linux: ~/.config/vlsetup/
func ConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, AppDirName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// ConfigPath returns the path to the config file.
// e.g., ~/.config/vlsetup/config.yml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

type Config struct {
	// Language for console output (e.g., "en", "zh")
	Language string `yaml:"language,omitempty"`

	// Python interpreter to use (empty means auto-discover)
	Python string `yaml:"python,omitempty"`

	// AppDir is the application checkout to set up and launch
	AppDir string `yaml:"app_dir,omitempty"`

	// AppEntry is the Streamlit entry script, relative to AppDir
	AppEntry string `yaml:"app_entry,omitempty"`

	// Requirements file to install, relative to AppDir
	Requirements string `yaml:"requirements,omitempty"`

	// IndexURL pins the pip index; empty means auto-select
	IndexURL string `yaml:"index_url,omitempty"`

	// Torch flavor: "auto", "cuda" or "cpu"
	Torch string `yaml:"torch,omitempty"`

	// Launch settings for `vlsetup launch`
	Launch LaunchConfig `yaml:"launch,omitempty"`
}

// LaunchConfig holds settings for the detached app process
type LaunchConfig struct {
	// Port the Streamlit server listens on (default: 8501)
	Port int `yaml:"port,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Language:     "en",
		AppDir:       ".",
		AppEntry:     "st.py",
		Requirements: "requirements.txt",
		Torch:        TorchAuto,
		Launch: LaunchConfig{
			Port: 8501,
		},
	}
}

// Exists checks if config file exists
func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the config from ~/.config/vlsetup/config.yml
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// Expand tilde in paths
	cfg.AppDir = expandPath(cfg.AppDir)
	cfg.Python = expandPath(cfg.Python)

	return cfg, nil
}

// expandPath expands the tilde (~) in the path to the user's home directory.
// It handles both forward and backward slashes to ensure cross-platform compatibility
// for configuration files.
func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		// Only expand if it's explicitly "~", "~/", or "~\"
		if len(path) == 1 || path[1] == '/' || path[1] == '\\' {
			home, err := os.UserHomeDir()
			if err == nil {
				subPath := path[1:]
				// Handle the separator manually to ensure clean join across platforms
				// This allows "~\VideoLingo" to work correctly on macOS/Linux as well
				if len(subPath) > 0 && (subPath[0] == '/' || subPath[0] == '\\') {
					subPath = subPath[1:]
				}
				return filepath.Join(home, subPath)
			}
		}
	}

	return path
}

// Save writes the config to ~/.config/vlsetup/config.yml
func Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	configPath, err := ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Add a header comment
	header := "# vlsetup configuration file\n# Run 'vlsetup config set <key> <value>' to modify\n\n"
	content := header + string(data)

	return os.WriteFile(configPath, []byte(content), 0644)
}

// SavePath returns the path where config will be saved
func SavePath() string {
	if path, err := ConfigPath(); err == nil {
		return path
	}
	return "config.yml"
}

// LoadOrDefault loads config if it exists, otherwise returns defaults
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = DefaultConfig()
	}
	return cfg
}

// Get returns the value of a config key as a string
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "language":
		return c.Language, nil
	case "python":
		return c.Python, nil
	case "app_dir":
		return c.AppDir, nil
	case "app_entry":
		return c.AppEntry, nil
	case "requirements":
		return c.Requirements, nil
	case "index_url":
		return c.IndexURL, nil
	case "torch":
		return c.Torch, nil
	case "launch.port":
		return strconv.Itoa(c.Launch.Port), nil
	default:
		return "", fmt.Errorf("unknown config key: %s (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}
}

// Set assigns a config key from its string representation
func (c *Config) Set(key, value string) error {
	switch key {
	case "language":
		c.Language = value
	case "python":
		c.Python = expandPath(value)
	case "app_dir":
		c.AppDir = expandPath(value)
	case "app_entry":
		c.AppEntry = value
	case "requirements":
		c.Requirements = value
	case "index_url":
		c.IndexURL = value
	case "torch":
		if value != TorchAuto && value != TorchCUDA && value != TorchCPU {
			return fmt.Errorf("invalid torch flavor %q (must be %s, %s or %s)", value, TorchAuto, TorchCUDA, TorchCPU)
		}
		c.Torch = value
	case "launch.port":
		port, err := strconv.Atoi(value)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid port: %s", value)
		}
		c.Launch.Port = port
	default:
		return fmt.Errorf("unknown config key: %s (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}
	return nil
}

// Keys returns all settable config keys
func Keys() []string {
	keys := []string{
		"language",
		"python",
		"app_dir",
		"app_entry",
		"requirements",
		"index_url",
		"torch",
		"launch.port",
	}
	sort.Strings(keys)
	return keys
}
