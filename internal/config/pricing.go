package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PricingConfig drives catalog import: the default markup applied to freshly
// synced services and the ordered keyword tables used to classify them.
// Ordering matters: the first keyword that matches wins.
type PricingConfig struct {
	DefaultMarkupPercent float64       `mapstructure:"defaultMarkupPercent"`
	Platforms            []KeywordRule `mapstructure:"platforms"`
	Kinds                []KeywordRule `mapstructure:"kinds"`
}

type KeywordRule struct {
	Keyword string `mapstructure:"keyword"`
	Label   string `mapstructure:"label"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		DefaultMarkupPercent: 20,
		Platforms: []KeywordRule{
			{Keyword: "instagram", Label: "Instagram"},
			{Keyword: "tiktok", Label: "TikTok"},
			{Keyword: "tik tok", Label: "TikTok"},
			{Keyword: "youtube", Label: "YouTube"},
			{Keyword: "facebook", Label: "Facebook"},
			{Keyword: "twitter", Label: "Twitter"},
			{Keyword: "kwai", Label: "Kwai"},
			{Keyword: "telegram", Label: "Telegram"},
			{Keyword: "spotify", Label: "Spotify"},
			{Keyword: "twitch", Label: "Twitch"},
			{Keyword: "discord", Label: "Discord"},
			{Keyword: "linkedin", Label: "LinkedIn"},
			{Keyword: "website", Label: "Website"},
		},
		Kinds: []KeywordRule{
			{Keyword: "follower", Label: "Seguidores"},
			{Keyword: "seguidor", Label: "Seguidores"},
			{Keyword: "subscriber", Label: "Inscritos"},
			{Keyword: "inscrito", Label: "Inscritos"},
			{Keyword: "member", Label: "Membros"},
			{Keyword: "membro", Label: "Membros"},
			{Keyword: "like", Label: "Curtidas"},
			{Keyword: "curtida", Label: "Curtidas"},
			{Keyword: "comment", Label: "Comentários"},
			{Keyword: "comentário", Label: "Comentários"},
			{Keyword: "comentario", Label: "Comentários"},
			{Keyword: "view", Label: "Visualizações"},
			{Keyword: "visualiza", Label: "Visualizações"},
			{Keyword: "share", Label: "Compartilhamentos"},
			{Keyword: "compartilha", Label: "Compartilhamentos"},
			{Keyword: "play", Label: "Reproduções"},
			{Keyword: "stream", Label: "Reproduções"},
			{Keyword: "live", Label: "Lives"},
			{Keyword: "traffic", Label: "Tráfego"},
			{Keyword: "tráfego", Label: "Tráfego"},
		},
	}
}

type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
}

// NewPricingConfigHolderFrom builds a holder around a fixed config. Tests use it.
func NewPricingConfigHolderFrom(cfg PricingConfig) *PricingConfigHolder {
	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewPricingConfigHolder() (*PricingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/viralzap/config")
	v.AddConfigPath("/etc/viralzap")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VIRALZAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPricingConfig()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		v.SetDefault("pricing.defaultMarkupPercent", defaults.DefaultMarkupPercent)
		v.SetDefault("pricing.platforms", defaults.Platforms)
		v.SetDefault("pricing.kinds", defaults.Kinds)
	}

	var cfg PricingConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return nil, err
	}
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewPricingConfigHolderFrom(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingConfig
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Printf("[pricing-config] reload failed: %v", err)
			return
		}
		if err := validatePricingConfig(updated); err != nil {
			log.Printf("[pricing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[pricing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *PricingConfigHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

func validatePricingConfig(cfg PricingConfig) error {
	if cfg.DefaultMarkupPercent < 0 {
		return errors.New("pricing.defaultMarkupPercent cannot be negative")
	}
	if len(cfg.Platforms) == 0 {
		return errors.New("pricing.platforms cannot be empty")
	}
	if len(cfg.Kinds) == 0 {
		return errors.New("pricing.kinds cannot be empty")
	}
	return nil
}
