package nudge

import (
	"fmt"
	"os"

	"github.com/mindtide/mindtide/internal/models"
	"gopkg.in/yaml.v3"
)

// rulesFile is the YAML document shape
type rulesFile struct {
	Rules []models.NudgeRule `yaml:"rules"`
}

// LoadRules reads and validates the nudge rules file
func LoadRules(path string) ([]models.NudgeRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read nudge rules: %w", err)
	}
	return ParseRules(raw)
}

// ParseRules parses and validates YAML rule content
func ParseRules(raw []byte) ([]models.NudgeRule, error) {
	var doc rulesFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse nudge rules: %w", err)
	}

	seen := make(map[string]bool)
	for i := range doc.Rules {
		rule := &doc.Rules[i]
		if rule.Name == "" {
			return nil, fmt.Errorf("rule %d: name is required", i)
		}
		if seen[rule.Name] {
			return nil, fmt.Errorf("duplicate rule name %q", rule.Name)
		}
		seen[rule.Name] = true
		if rule.Message == "" {
			return nil, fmt.Errorf("rule %q: message is required", rule.Name)
		}
		if rule.MinStressLevel < 0 || rule.MinStressLevel > 5 {
			return nil, fmt.Errorf("rule %q: min_stress_level must be 0-5", rule.Name)
		}
		if rule.QuietStartHour < 0 || rule.QuietStartHour > 23 || rule.QuietEndHour < 0 || rule.QuietEndHour > 23 {
			return nil, fmt.Errorf("rule %q: quiet hours must be 0-23", rule.Name)
		}
		if rule.MaxPerDay <= 0 {
			rule.MaxPerDay = 1
		}
	}
	return doc.Rules, nil
}
