// Package config provides the configuration of the codec tooling.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v2"

	"github.com/tanglekit/blockcodec/pkg/block"
	"github.com/tanglekit/blockcodec/pkg/codec"
)

var (
	logLevels     = []string{"trace", "debug", "info", "warn", "error", "fatal"}
	unknownFields = []string{"ignore", "reject"}
)

const (
	defaultHRP       = "rms"
	maxHRPLength     = 83
	defaultNetworkID = codec.UInt64Str(8342982141227064571)
)

type Config struct {
	System  *SystemConfig  `json:"system" yaml:"system"`
	Codec   *CodecConfig   `json:"codec" yaml:"codec"`
	Storage *StorageConfig `json:"storage" yaml:"storage"`
	Network *NetworkConfig `json:"network" yaml:"network"`
}

// Load reads a config file. Files ending in .yaml or .yml are parsed as YAML, anything
// else as JSON.
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	switch filepath.Ext(filePath) {
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", filePath, err)
	}
	return cfg, nil
}

// Default returns a config with every default inserted.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.InsertDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) InsertDefault() error {
	if c.System == nil {
		c.System = &SystemConfig{}
	}
	if err := c.System.InsertDefault(); err != nil {
		return err
	}
	if c.Codec == nil {
		c.Codec = &CodecConfig{}
	}
	c.Codec.InsertDefault()
	if c.Storage == nil {
		c.Storage = &StorageConfig{}
	}
	if c.Network == nil {
		c.Network = &NetworkConfig{}
	}
	c.Network.InsertDefault()
	return nil
}

// Merge overwrites values of c with the ones set in config.
func (c *Config) Merge(config *Config) {
	if config == nil {
		return
	}
	if config.System != nil {
		if c.System == nil {
			c.System = config.System
		} else {
			c.System.Merge(config.System)
		}
	}
	if config.Codec != nil {
		if c.Codec == nil {
			c.Codec = config.Codec
		} else {
			c.Codec.Merge(config.Codec)
		}
	}
	if config.Storage != nil {
		if c.Storage == nil {
			c.Storage = config.Storage
		} else {
			c.Storage.Merge(config.Storage)
		}
	}
	if config.Network != nil {
		if c.Network == nil {
			c.Network = config.Network
		} else {
			c.Network.Merge(config.Network)
		}
	}
}

func (c *Config) Validate() error {
	if c.System == nil || c.Codec == nil || c.Storage == nil || c.Network == nil {
		return errors.New("config is missing sections, call InsertDefault first")
	}
	if err := c.System.Validate(); err != nil {
		return err
	}
	if err := c.Codec.Validate(); err != nil {
		return err
	}
	return c.Network.Validate()
}

type SystemConfig struct {
	DataPath string `json:"dataPath" yaml:"dataPath"`
	LogLevel string `json:"logLevel" yaml:"logLevel"`
}

func (c *SystemConfig) InsertDefault() error {
	if c.DataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		c.DataPath = path.Join(home, ".blockcodec", "data")
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return nil
}

func (c *SystemConfig) Merge(config *SystemConfig) {
	if config.DataPath != "" {
		c.DataPath = config.DataPath
	}
	if config.LogLevel != "" {
		c.LogLevel = config.LogLevel
	}
}

func (c SystemConfig) Validate() error {
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("log level %s is not allowed", c.LogLevel)
	}
	if c.DataPath == "" {
		return errors.New("dataPath cannot be empty")
	}
	return nil
}

type CodecConfig struct {
	MaxDepth      int    `json:"maxDepth" yaml:"maxDepth"`
	UnknownFields string `json:"unknownFields" yaml:"unknownFields"`
}

func (c *CodecConfig) InsertDefault() {
	if c.MaxDepth == 0 {
		c.MaxDepth = block.DefaultMaxDepth
	}
	if c.UnknownFields == "" {
		c.UnknownFields = block.IgnoreUnknownFields.String()
	}
}

func (c *CodecConfig) Merge(config *CodecConfig) {
	if config.MaxDepth != 0 {
		c.MaxDepth = config.MaxDepth
	}
	if config.UnknownFields != "" {
		c.UnknownFields = config.UnknownFields
	}
}

func (c CodecConfig) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("codec maxDepth %d must be positive", c.MaxDepth)
	}
	if !slices.Contains(unknownFields, c.UnknownFields) {
		return fmt.Errorf("codec unknownFields %s is not allowed", c.UnknownFields)
	}
	return nil
}

// DecoderOptions returns the decoder options described by the config.
func (c CodecConfig) DecoderOptions() ([]block.DecoderOption, error) {
	policy, err := block.ParseUnknownFieldPolicy(c.UnknownFields)
	if err != nil {
		return nil, err
	}
	return []block.DecoderOption{
		block.WithMaxDepth(c.MaxDepth),
		block.WithUnknownFields(policy),
	}, nil
}

type StorageConfig struct {
	InMemory bool `json:"inMemory" yaml:"inMemory"`
}

func (c *StorageConfig) Merge(config *StorageConfig) {
	if config.InMemory {
		c.InMemory = true
	}
}

type NetworkConfig struct {
	HRP       string `json:"hrp" yaml:"hrp"`
	NetworkID codec.UInt64Str `json:"networkId" yaml:"networkId"`
}

func (c *NetworkConfig) InsertDefault() {
	if c.HRP == "" {
		c.HRP = defaultHRP
	}
	if c.NetworkID == 0 {
		c.NetworkID = defaultNetworkID
	}
}

func (c *NetworkConfig) Merge(config *NetworkConfig) {
	if config.HRP != "" {
		c.HRP = config.HRP
	}
	if config.NetworkID != 0 {
		c.NetworkID = config.NetworkID
	}
}

func (c NetworkConfig) Validate() error {
	if c.HRP == "" || len(c.HRP) > maxHRPLength {
		return fmt.Errorf("network hrp %q must be 1..%d characters", c.HRP, maxHRPLength)
	}
	for _, r := range c.HRP {
		if r < 33 || r > 126 || (r >= 'A' && r <= 'Z') {
			return fmt.Errorf("network hrp %q must be lowercase printable ascii", c.HRP)
		}
	}
	return nil
}
