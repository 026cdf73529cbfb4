package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// FinanceConfig carries the tunable bookkeeping conventions.
type FinanceConfig struct {
	DefaultCategory   string   `mapstructure:"defaultCategory"`
	FeeKeys           []string `mapstructure:"feeKeys"`
	WarnFirstReading  bool     `mapstructure:"warnFirstReading"`
	PortfolioParallel int      `mapstructure:"portfolioParallel"`
}

func DefaultFinanceConfig() FinanceConfig {
	return FinanceConfig{
		DefaultCategory:   "other",
		FeeKeys:           []string{"garbage", "cleaning", "wifi", "parking", "miscellaneous"},
		WarnFirstReading:  true,
		PortfolioParallel: 4,
	}
}

type FinanceConfigHolder struct {
	current atomic.Value // holds FinanceConfig
}

// NewStaticFinanceConfigHolder wraps a fixed config, mostly for tests and CLI one-shots.
func NewStaticFinanceConfigHolder(cfg FinanceConfig) *FinanceConfigHolder {
	holder := &FinanceConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewFinanceConfigHolder() (*FinanceConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("finance")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/rentbook")
	v.AddConfigPath(".")

	v.SetEnvPrefix("RENTBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultFinanceConfig()
	v.SetDefault("finance.defaultCategory", defaults.DefaultCategory)
	v.SetDefault("finance.feeKeys", defaults.FeeKeys)
	v.SetDefault("finance.warnFirstReading", defaults.WarnFirstReading)
	v.SetDefault("finance.portfolioParallel", defaults.PortfolioParallel)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg FinanceConfig
	if err := v.UnmarshalKey("finance", &cfg); err != nil {
		return nil, err
	}
	if err := validateFinanceConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticFinanceConfigHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated FinanceConfig
		if err := v.UnmarshalKey("finance", &updated); err != nil {
			log.Printf("[finance-config] reload failed: %v", err)
			return
		}
		if err := validateFinanceConfig(updated); err != nil {
			log.Printf("[finance-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[finance-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *FinanceConfigHolder) Get() FinanceConfig {
	if h == nil {
		return DefaultFinanceConfig()
	}
	cfg, ok := h.current.Load().(FinanceConfig)
	if !ok {
		return DefaultFinanceConfig()
	}
	return cfg
}

func validateFinanceConfig(cfg FinanceConfig) error {
	if strings.TrimSpace(cfg.DefaultCategory) == "" {
		return errors.New("finance.defaultCategory cannot be empty")
	}
	if len(cfg.FeeKeys) == 0 {
		return errors.New("finance.feeKeys cannot be empty")
	}
	if cfg.PortfolioParallel < 1 {
		return errors.New("finance.portfolioParallel must be positive")
	}
	return nil
}
