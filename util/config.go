package util

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = "config.yaml"

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	Conf struct {
		SocialFile     string `yaml:"socialFile"`
		FetchTimeout   int    `yaml:"fetchTimeout"`   // seconds, per source
		FetchRetries   int    `yaml:"fetchRetries"`   // attempts after the first failure
		MaxConcurrent  int    `yaml:"maxConcurrent"`  // parallel fetches
		RequestsPerSec int    `yaml:"requestsPerSec"` // rate limit across all fetches
		AutoParse      bool   `yaml:"autoParse"`      // tokenize posts on construction
		SummaryLength  int    `yaml:"summaryLength"`
	}
}

// ReadConf loads the configuration, falling back to embedded defaults when
// no config file exists. Environment variables override file values.
func ReadConf(path string) (*AppConfig, error) {
	c := &AppConfig{}

	buf, err := os.ReadFile(path)
	if err != nil {
		buf = embeddedConfig
	}

	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, fmt.Errorf("in config file: %w", err)
	}

	if v := os.Getenv("ORGSOCIAL_FILE"); v != "" {
		c.Conf.SocialFile = v
	}

	if v := os.Getenv("ORGSOCIAL_FETCH_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parsing ORGSOCIAL_FETCH_TIMEOUT: %w", err)
		}
		c.Conf.FetchTimeout = n
	}

	if v := os.Getenv("ORGSOCIAL_FETCH_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parsing ORGSOCIAL_FETCH_RETRIES: %w", err)
		}
		c.Conf.FetchRetries = n
	}

	if v := os.Getenv("ORGSOCIAL_MAX_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parsing ORGSOCIAL_MAX_CONCURRENT: %w", err)
		}
		c.Conf.MaxConcurrent = n
	}

	if v := os.Getenv("ORGSOCIAL_AUTO_PARSE"); v != "" {
		c.Conf.AutoParse = v == "true"
	}

	// Guard against unusable values from config or environment.
	if c.Conf.FetchTimeout < 1 {
		c.Conf.FetchTimeout = 30
	}
	if c.Conf.FetchRetries < 0 {
		c.Conf.FetchRetries = 0
	}
	if c.Conf.MaxConcurrent < 1 {
		c.Conf.MaxConcurrent = 8
	}
	if c.Conf.RequestsPerSec < 1 {
		c.Conf.RequestsPerSec = 10
	}
	if c.Conf.SummaryLength < 1 {
		c.Conf.SummaryLength = 80
	}

	return c, nil
}
