package config

import (
	"encoding/json"
	"os"
	"sync"
)

type Config struct {
	Port            string `json:"port"`
	DatabasePath    string `json:"databasePath"`
	SeedFolderPath  string `json:"seedFolderPath"`
	ReportOutputDir string `json:"reportOutputDir"`
	TokenTTLHours   int    `json:"tokenTTLHours"`
	BillingBaseURL  string `json:"billingBaseURL"`
	DefaultLanguage string `json:"defaultLanguage"`

	// Secrets come from the environment, never from the config file.
	JWTSecret         string `json:"-"`
	BillingServiceKey string `json:"-"`
}

var (
	cfg Config
	mu  sync.RWMutex
)

const configFilePath = "./seamline_config.json"

func applyDefaults(c *Config) {
	if c.Port == "" {
		c.Port = ":8080"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "./seamline.db"
	}
	if c.SeedFolderPath == "" {
		c.SeedFolderPath = "seed"
	}
	if c.ReportOutputDir == "" {
		c.ReportOutputDir = "reports"
	}
	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 72
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = "en"
	}
	c.JWTSecret = os.Getenv("SEAMLINE_JWT_SECRET")
	c.BillingServiceKey = os.Getenv("SEAMLINE_BILLING_KEY")
	if v := os.Getenv("SEAMLINE_BILLING_URL"); v != "" {
		c.BillingBaseURL = v
	}
}

func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	file, err := os.ReadFile(configFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			var def Config
			applyDefaults(&def)
			cfg = def
			return def, nil
		}
		return Config{}, err
	}

	var tempCfg Config
	if err := json.Unmarshal(file, &tempCfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&tempCfg)
	cfg = tempCfg

	return cfg, nil
}

func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	applyDefaults(&newCfg)

	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(configFilePath, file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}
