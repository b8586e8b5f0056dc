package main

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed economy.yaml
var defaultConfigYAML []byte

type GameConfig struct {
	Rules           RulesConfig         `yaml:"rules"`
	Upgrades        []UpgradeConfig     `yaml:"upgrades"`
	TaxModifiers    []TaxModifierConfig `yaml:"taxModifiers"`
	NarrativeEvents []NarrativeConfig   `yaml:"narrativeEvents"`
	AdverseEvents   []AdverseConfig     `yaml:"adverseEvents"`
}

// RulesConfig carries the tunable constants of the simulation. Keys omitted
// from the YAML keep the values from defaultRules; explicit zeros are kept.
type RulesConfig struct {
	StartingClickYield int64         `yaml:"startingClickYield"`
	BaseTaxRate        int           `yaml:"baseTaxRate"`
	TaxInterval        time.Duration `yaml:"taxInterval"`
	InterestPerTick    float64       `yaml:"interestPerTick"`
	ProcessPeriod      time.Duration `yaml:"processPeriod"`
	ClockStep          time.Duration `yaml:"clockStep"`
	AdverseChance      float64       `yaml:"adverseChance"`
	AdverseRollGate    int64         `yaml:"adverseRollGate"`
	AdverseTriggerGate int64         `yaml:"adverseTriggerGate"`
	NotificationTTL    time.Duration `yaml:"notificationTTL"`
	ExperiencePerLevel int64         `yaml:"experiencePerLevel"`
	PriceGrowth        float64       `yaml:"priceGrowth"`
}

type UpgradeConfig struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Icon          string `yaml:"icon"`
	BaseCost      int64  `yaml:"baseCost"`
	IncomePerUnit int64  `yaml:"incomePerUnit"`
	ClickPerUnit  int64  `yaml:"clickPerUnit"`
}

type TaxModifierConfig struct {
	ID               string        `yaml:"id"`
	Name             string        `yaml:"name"`
	Description      string        `yaml:"description"`
	Cost             int64         `yaml:"cost"`
	ReductionPercent int           `yaml:"reductionPercent"`
	Duration         time.Duration `yaml:"duration"`
}

type NarrativeConfig struct {
	ID        string         `yaml:"id"`
	Title     string         `yaml:"title"`
	Character string         `yaml:"character"`
	Message   string         `yaml:"message"`
	Threshold int64          `yaml:"threshold"`
	Choices   []ChoiceConfig `yaml:"choices"`
}

// ChoiceKind closes the set of shapes a narrative choice can take.
type ChoiceKind string

const (
	ChoiceNothing    ChoiceKind = "nothing"
	ChoiceReward     ChoiceKind = "reward"
	ChoiceCost       ChoiceKind = "cost"
	ChoiceCostReward ChoiceKind = "cost_reward"
	// ChoiceLoan credits Reward and books the same amount as debt.
	ChoiceLoan ChoiceKind = "loan"
)

type ChoiceConfig struct {
	Text    string     `yaml:"text"`
	Kind    ChoiceKind `yaml:"kind"`
	Cost    int64      `yaml:"cost"`
	Reward  int64      `yaml:"reward"`
	Message string     `yaml:"message"`
}

type CostRule string

const (
	CostPercent CostRule = "percent"
	CostRange   CostRule = "range"
)

type AdverseConfig struct {
	ID        string   `yaml:"id"`
	Title     string   `yaml:"title"`
	Character string   `yaml:"character"`
	Message   string   `yaml:"message"`
	Rule      CostRule `yaml:"rule"`
	Percent   int64    `yaml:"percent"`
	Min       int64    `yaml:"min"`
	Spread    int64    `yaml:"spread"`
}

func LoadConfig(path string) (GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GameConfig{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// DefaultConfig returns the catalog shipped inside the binary.
func DefaultConfig() (GameConfig, error) {
	return ParseConfig(defaultConfigYAML)
}

func ParseConfig(data []byte) (GameConfig, error) {
	cfg := GameConfig{Rules: defaultRules()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GameConfig{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return GameConfig{}, err
	}
	return cfg, nil
}

func defaultRules() RulesConfig {
	return RulesConfig{
		StartingClickYield: 1,
		BaseTaxRate:        35,
		TaxInterval:        10 * time.Second,
		InterestPerTick:    0.00004,
		ProcessPeriod:      time.Second,
		ClockStep:          100 * time.Millisecond,
		AdverseChance:      0.005,
		AdverseRollGate:    100,
		AdverseTriggerGate: 50,
		NotificationTTL:    2 * time.Second,
		ExperiencePerLevel: 100,
		PriceGrowth:        1.15,
	}
}

func (cfg GameConfig) validate() error {
	r := cfg.Rules
	if r.StartingClickYield < 0 {
		return fmt.Errorf("rules: startingClickYield must not be negative")
	}
	if r.BaseTaxRate < 0 || r.BaseTaxRate > 100 {
		return fmt.Errorf("rules: baseTaxRate %d out of range", r.BaseTaxRate)
	}
	if r.TaxInterval < 0 || r.NotificationTTL < 0 {
		return fmt.Errorf("rules: durations must not be negative")
	}
	if r.ProcessPeriod <= 0 || r.ClockStep <= 0 {
		return fmt.Errorf("rules: processPeriod and clockStep must be positive")
	}
	if r.InterestPerTick < 0 {
		return fmt.Errorf("rules: interestPerTick must not be negative")
	}
	if r.AdverseChance < 0 || r.AdverseChance > 1 {
		return fmt.Errorf("rules: adverseChance %v out of range", r.AdverseChance)
	}
	if r.ExperiencePerLevel < 0 {
		return fmt.Errorf("rules: experiencePerLevel must not be negative")
	}
	if r.PriceGrowth <= 1 {
		return fmt.Errorf("rules: priceGrowth must be greater than 1")
	}

	if len(cfg.Upgrades) == 0 {
		return fmt.Errorf("no upgrades defined")
	}
	seen := make(map[string]bool)
	for i, upgrade := range cfg.Upgrades {
		if upgrade.ID == "" {
			return fmt.Errorf("upgrade %d missing id", i)
		}
		if seen[upgrade.ID] {
			return fmt.Errorf("upgrade %s defined twice", upgrade.ID)
		}
		seen[upgrade.ID] = true
		if upgrade.BaseCost <= 0 {
			return fmt.Errorf("upgrade %s missing baseCost", upgrade.ID)
		}
		if upgrade.IncomePerUnit < 0 || upgrade.ClickPerUnit < 0 {
			return fmt.Errorf("upgrade %s has negative effect", upgrade.ID)
		}
	}

	seen = make(map[string]bool)
	for i, modifier := range cfg.TaxModifiers {
		if modifier.ID == "" {
			return fmt.Errorf("tax modifier %d missing id", i)
		}
		if seen[modifier.ID] {
			return fmt.Errorf("tax modifier %s defined twice", modifier.ID)
		}
		seen[modifier.ID] = true
		if modifier.Cost <= 0 {
			return fmt.Errorf("tax modifier %s missing cost", modifier.ID)
		}
		if modifier.ReductionPercent <= 0 {
			return fmt.Errorf("tax modifier %s missing reductionPercent", modifier.ID)
		}
		if modifier.Duration <= 0 {
			return fmt.Errorf("tax modifier %s missing duration", modifier.ID)
		}
	}

	seen = make(map[string]bool)
	for i, event := range cfg.NarrativeEvents {
		if event.ID == "" {
			return fmt.Errorf("narrative event %d missing id", i)
		}
		if seen[event.ID] {
			return fmt.Errorf("narrative event %s defined twice", event.ID)
		}
		seen[event.ID] = true
		if event.Threshold <= 0 {
			return fmt.Errorf("narrative event %s missing threshold", event.ID)
		}
		if len(event.Choices) == 0 {
			return fmt.Errorf("narrative event %s has no choices", event.ID)
		}
		for j, choice := range event.Choices {
			if err := choice.validate(); err != nil {
				return fmt.Errorf("narrative event %s choice %d: %w", event.ID, j, err)
			}
		}
	}

	seen = make(map[string]bool)
	for i, event := range cfg.AdverseEvents {
		if event.ID == "" {
			return fmt.Errorf("adverse event %d missing id", i)
		}
		if seen[event.ID] {
			return fmt.Errorf("adverse event %s defined twice", event.ID)
		}
		seen[event.ID] = true
		switch event.Rule {
		case CostPercent:
			if event.Percent <= 0 || event.Percent > 100 {
				return fmt.Errorf("adverse event %s percent %d out of range", event.ID, event.Percent)
			}
		case CostRange:
			if event.Min < 0 || event.Spread <= 0 {
				return fmt.Errorf("adverse event %s needs min >= 0 and spread > 0", event.ID)
			}
		default:
			return fmt.Errorf("adverse event %s has unknown rule %q", event.ID, event.Rule)
		}
	}
	return nil
}

func (c ChoiceConfig) validate() error {
	if c.Cost < 0 || c.Reward < 0 {
		return fmt.Errorf("negative amount")
	}
	switch c.Kind {
	case ChoiceNothing:
		if c.Cost != 0 || c.Reward != 0 {
			return fmt.Errorf("kind %s takes no amounts", c.Kind)
		}
	case ChoiceReward, ChoiceLoan:
		if c.Reward == 0 || c.Cost != 0 {
			return fmt.Errorf("kind %s needs reward only", c.Kind)
		}
	case ChoiceCost:
		if c.Cost == 0 || c.Reward != 0 {
			return fmt.Errorf("kind %s needs cost only", c.Kind)
		}
	case ChoiceCostReward:
		if c.Cost == 0 || c.Reward == 0 {
			return fmt.Errorf("kind %s needs cost and reward", c.Kind)
		}
	default:
		return fmt.Errorf("unknown kind %q", c.Kind)
	}
	return nil
}

// Catalog is the immutable, indexed form of a GameConfig shared by every
// Economy value of a session.
type Catalog struct {
	Rules        RulesConfig
	Upgrades     []UpgradeConfig
	TaxModifiers []TaxModifierConfig
	// Narratives is ordered by ascending threshold.
	Narratives []NarrativeConfig
	Adverse    []AdverseConfig

	upgradeIndex  map[string]int
	modifierIndex map[string]int

	interest    decimal.Decimal
	priceGrowth decimal.Decimal
}

func NewCatalog(cfg GameConfig) *Catalog {
	c := &Catalog{
		Rules:         cfg.Rules,
		Upgrades:      append([]UpgradeConfig(nil), cfg.Upgrades...),
		TaxModifiers:  append([]TaxModifierConfig(nil), cfg.TaxModifiers...),
		Narratives:    append([]NarrativeConfig(nil), cfg.NarrativeEvents...),
		Adverse:       append([]AdverseConfig(nil), cfg.AdverseEvents...),
		upgradeIndex:  make(map[string]int, len(cfg.Upgrades)),
		modifierIndex: make(map[string]int, len(cfg.TaxModifiers)),
		interest:      decimal.NewFromFloat(cfg.Rules.InterestPerTick),
		priceGrowth:   decimal.NewFromFloat(cfg.Rules.PriceGrowth),
	}
	sort.SliceStable(c.Narratives, func(i, j int) bool {
		return c.Narratives[i].Threshold < c.Narratives[j].Threshold
	})
	for i, upgrade := range c.Upgrades {
		c.upgradeIndex[upgrade.ID] = i
	}
	for i, modifier := range c.TaxModifiers {
		c.modifierIndex[modifier.ID] = i
	}
	return c
}

func (c *Catalog) Upgrade(id string) (UpgradeConfig, bool) {
	i, ok := c.upgradeIndex[id]
	if !ok {
		return UpgradeConfig{}, false
	}
	return c.Upgrades[i], true
}

func (c *Catalog) TaxModifier(id string) (TaxModifierConfig, bool) {
	i, ok := c.modifierIndex[id]
	if !ok {
		return TaxModifierConfig{}, false
	}
	return c.TaxModifiers[i], true
}

func (c *Catalog) Narrative(id string) (NarrativeConfig, bool) {
	for _, event := range c.Narratives {
		if event.ID == id {
			return event, true
		}
	}
	return NarrativeConfig{}, false
}
