package control

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// KeyBinding binds one key to one actuator with a signed step applied
// per frame while the key is held.
type KeyBinding struct {
	Key         string  `yaml:"key"`
	Actuator    string  `yaml:"actuator"`
	Step        float64 `yaml:"step"`
	Description string  `yaml:"description,omitempty"`
}

// Table is the binding set for one scene.
type Table struct {
	Scene    string       `yaml:"scene"`
	Bindings []KeyBinding `yaml:"bindings"`
}

// Config holds the configured binding tables. Tables registered at
// runtime replace configured ones with the same scene name.
type Config struct {
	Tables []Table `yaml:"tables"`
}

// LoadConfig parses a YAML binding configuration.
func LoadConfig(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("control: parse config: %w", err)
	}
	return &c, nil
}

// Table looks up the binding table for a scene.
func (c *Config) Table(scene string) (Table, bool) {
	for _, t := range c.Tables {
		if t.Scene == scene {
			return t, true
		}
	}
	return Table{}, false
}

// Register installs a table at runtime, replacing any table with the
// same scene name.
func (c *Config) Register(t Table) {
	for i, existing := range c.Tables {
		if existing.Scene == t.Scene {
			c.Tables[i] = t
			return
		}
	}
	c.Tables = append(c.Tables, t)
}
