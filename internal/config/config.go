package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	configFileName = "verifier.conf"
	defaultDir     = ".litetable"

	defaultLocalAddress    = "127.0.0.1:9443"
	defaultRegistryAddress = "127.0.0.1:6379"
)

// Config is the process configuration of one verifier run. It is built once
// at submission and passed explicitly to every component; nothing reads it
// through globals.
type Config struct {
	// LocalAddress is the cluster whose data is treated as the source of
	// truth for the comparison.
	LocalAddress string
	EnableTLS    bool
	ServerName   string

	// RegistryAddress locates the metadata registry holding replication peer
	// configurations.
	RegistryAddress string
	RegistryDB      int

	DialTimeout time.Duration
	ReadTimeout time.Duration
	Workers     int
	Debug       bool
}

func (c *Config) validate() error {
	var errGrp []error
	if c.LocalAddress == "" {
		errGrp = append(errGrp, errors.New("local cluster address is required"))
	}
	if c.RegistryAddress == "" {
		errGrp = append(errGrp, errors.New("registry address is required"))
	}
	if c.Workers < 0 {
		errGrp = append(errGrp, errors.New("workers cannot be negative"))
	}
	return errors.Join(errGrp...)
}

// Load builds the configuration from the conf file at path (defaults to
// ~/.litetable/verifier.conf), then applies LTVERIFY_* environment
// overrides. A missing conf file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{
		LocalAddress:    defaultLocalAddress,
		RegistryAddress: defaultRegistryAddress,
	}

	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, defaultDir, configFileName)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err = cfg.readFile(path); err != nil {
				return nil, err
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "local_address":
			c.LocalAddress = value
		case "enable_tls":
			c.EnableTLS = value == "true"
		case "server_name":
			c.ServerName = value
		case "registry_address":
			c.RegistryAddress = value
		case "registry_db":
			c.RegistryDB, err = strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid registry db value: %w", err)
			}
		case "dial_timeout":
			c.DialTimeout, err = parseSeconds(value)
			if err != nil {
				return fmt.Errorf("invalid dial timeout value: %w", err)
			}
		case "read_timeout":
			c.ReadTimeout, err = parseSeconds(value)
			if err != nil {
				return fmt.Errorf("invalid read timeout value: %w", err)
			}
		case "workers":
			c.Workers, err = strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid workers value: %w", err)
			}
		case "debug":
			c.Debug = value == "true"
		}
	}

	if err = scanner.Err(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LTVERIFY_LOCAL_ADDRESS"); v != "" {
		c.LocalAddress = v
	}
	if v := os.Getenv("LTVERIFY_REGISTRY_ADDRESS"); v != "" {
		c.RegistryAddress = v
	}
	if v := os.Getenv("LTVERIFY_REGISTRY_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RegistryDB = db
		}
	}
	if v := os.Getenv("LTVERIFY_ENABLE_TLS"); v != "" {
		c.EnableTLS = v == "true"
	}
	if v := os.Getenv("LTVERIFY_SERVER_NAME"); v != "" {
		c.ServerName = v
	}
	if v := os.Getenv("LTVERIFY_DEBUG"); v != "" {
		c.Debug = v == "true"
	}
}

func parseSeconds(value string) (time.Duration, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("duration cannot be negative: %d", n)
	}
	return time.Duration(n) * time.Second, nil
}
