package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

type ChainEnv struct {
	Rpc               string `yaml:"rpc"`
	ChainId           int64  `yaml:"chain_id"`
	PriorityFloorGwei int64  `yaml:"priority_floor_gwei"`
}

type Config struct {
	Exchange struct {
		Endpoint  string `yaml:"endpoint"`
		ApiKey    string `yaml:"api_key"`
		ApiSecret string `yaml:"api_secret"`
	} `yaml:"exchange"`

	Custody struct {
		WithdrawAddress string `yaml:"withdraw_address"`
		SigningKey      string `yaml:"signing_key"`
		SolSigningKey   string `yaml:"sol_signing_key"`
	} `yaml:"custody"`

	Env struct {
		Listen     string `yaml:"listen"`
		Debug      string `yaml:"debug"`
		QuoteAsset string `yaml:"quote_asset"`
	} `yaml:"env"`

	Chains map[string]ChainEnv `yaml:"chains"`
}

var YmlConfig *Config

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func init() {
	var confFilePath string
	if configFilePathFromEnv := os.Getenv("CEXBRIDGE_APP_ENV"); configFilePathFromEnv != "" {
		confFilePath = configFilePathFromEnv
	} else {
		confFilePath = "./prod.yml"
	}
	cfg, err := LoadConfig(confFilePath)
	if err != nil {
		if os.Getenv("CEXBRIDGE_APP_ENV") != "" {
			panic(err)
		}
		// no config file on disk, start with an empty config so tooling and
		// tests can fill fields in directly
		cfg = &Config{}
	}
	if cfg.Env.QuoteAsset == "" {
		cfg.Env.QuoteAsset = "USDT"
	}
	YmlConfig = cfg
}
