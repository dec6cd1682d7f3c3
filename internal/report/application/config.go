package application

import (
	"os"

	"gopkg.in/yaml.v3"

	report "adledger/internal/report/domain"
)

// RatesYAML mirrors report.Rates for configuration files. Zero fields fall
// back to the level below (country → global defaults → built-in defaults).
type RatesYAML struct {
	ChannelRates         map[string]float64 `yaml:"channel_rates"`
	SettlementCommission float64            `yaml:"settlement_commission"`
	BuyerRate            float64            `yaml:"buyer_rate"`
	RepeatHandlerRate    float64            `yaml:"repeat_handler_rate"`
	DepositTiers         []TierYAML         `yaml:"deposit_tiers"`
	TopTierRate          float64            `yaml:"top_tier_rate"`
	BonusThreshold       int                `yaml:"bonus_threshold"`
	BonusAmount          float64            `yaml:"bonus_amount"`
	PayrollMultiplier    float64            `yaml:"payroll_multiplier"`
	FixedDailyPay        map[string]float64 `yaml:"fixed_daily_pay"`
	FallbackOwnRate      float64            `yaml:"fallback_own_rate"`
}

// TierYAML is one first-deposit tier boundary.
type TierYAML struct {
	Bound int     `yaml:"bound"`
	Rate  float64 `yaml:"rate"`
}

// Config is the service configuration.
type Config struct {
	ListenAddr  string               `yaml:"listen_addr"`
	DatabaseURL string               `yaml:"database_url"`
	AuthSecret  string               `yaml:"auth_secret"`
	WebhookURL  string               `yaml:"webhook_url"`
	Defaults    RatesYAML            `yaml:"defaults"`
	Countries   map[string]RatesYAML `yaml:"countries"`
}

// LoadConfig loads config from the yaml file named by LEDGER_CONFIG, then
// fills gaps from env.
func LoadConfig() (Config, error) {
	var cfg Config
	if path := os.Getenv("LEDGER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = getenvDefault("LEDGER_LISTEN_ADDR", ":8080")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("LEDGER_DATABASE_URL")
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = os.Getenv("LEDGER_AUTH_SECRET")
	}
	if cfg.WebhookURL == "" {
		cfg.WebhookURL = os.Getenv("LEDGER_WEBHOOK_URL")
	}
	return cfg, nil
}

// RatesFor resolves the effective rates for a country: built-in defaults,
// overlaid with the global section, overlaid with the country section.
func (c Config) RatesFor(countryID string) report.Rates {
	rates := report.DefaultRates()
	rates = mergeRates(rates, c.Defaults)
	if c.Countries != nil {
		if override, ok := c.Countries[countryID]; ok {
			rates = mergeRates(rates, override)
		}
	}
	return rates
}

func mergeRates(base report.Rates, override RatesYAML) report.Rates {
	for channel, rate := range override.ChannelRates {
		if rate != 0 {
			base.ChannelRates[channel] = rate
		}
	}
	if override.SettlementCommission != 0 {
		base.SettlementCommission = override.SettlementCommission
	}
	if override.BuyerRate != 0 {
		base.BuyerRate = override.BuyerRate
	}
	if override.RepeatHandlerRate != 0 {
		base.RepeatHandlerRate = override.RepeatHandlerRate
	}
	if len(override.DepositTiers) > 0 {
		base.DepositTiers = base.DepositTiers[:0:0]
		for _, tier := range override.DepositTiers {
			base.DepositTiers = append(base.DepositTiers, report.DepositTier{Bound: tier.Bound, Rate: tier.Rate})
		}
	}
	if override.TopTierRate != 0 {
		base.TopTierRate = override.TopTierRate
	}
	if override.BonusThreshold != 0 {
		base.BonusThreshold = override.BonusThreshold
	}
	if override.BonusAmount != 0 {
		base.BonusAmount = override.BonusAmount
	}
	if override.PayrollMultiplier != 0 {
		base.PayrollMultiplier = override.PayrollMultiplier
	}
	if len(override.FixedDailyPay) > 0 {
		base.FixedDailyPay = map[string]float64{}
		for role, amount := range override.FixedDailyPay {
			base.FixedDailyPay[role] = amount
		}
	}
	if override.FallbackOwnRate != 0 {
		base.FallbackOwnRate = override.FallbackOwnRate
	}
	return base
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
