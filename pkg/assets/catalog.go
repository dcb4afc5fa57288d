package assets

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// RobotEntry names a predefined robot and the base path its candidate
// definition files resolve under.
type RobotEntry struct {
	Name     string `yaml:"name"`
	BasePath string `yaml:"base_path"`
}

// Catalog is the configured set of predefined robots and environments.
// Uploads register robots at runtime on top of it.
type Catalog struct {
	Robots       []RobotEntry            `yaml:"robots"`
	Environments []EnvironmentDescriptor `yaml:"environments"`
}

// LoadCatalog parses a YAML catalog document.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("assets: parse catalog: %w", err)
	}
	return &c, nil
}

// Robot looks up a predefined robot by name.
func (c *Catalog) Robot(name string) (RobotEntry, bool) {
	for _, r := range c.Robots {
		if r.Name == name {
			return r, true
		}
	}
	return RobotEntry{}, false
}

// Environment looks up an environment by name.
func (c *Catalog) Environment(name string) (EnvironmentDescriptor, bool) {
	for _, e := range c.Environments {
		if e.Name == name {
			return e, true
		}
	}
	return EnvironmentDescriptor{}, false
}

// AddRobot registers a robot entry at runtime, replacing any previous
// entry with the same name.
func (c *Catalog) AddRobot(entry RobotEntry) {
	for i, r := range c.Robots {
		if r.Name == entry.Name {
			c.Robots[i] = entry
			return
		}
	}
	c.Robots = append(c.Robots, entry)
}
