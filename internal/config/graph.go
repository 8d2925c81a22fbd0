package config

import (
	"os"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
)

// StatisticsStart is the start of the statistics window a graph card fetches.
var StatisticsStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// EntityConfig is one entry of a card's entity list. In YAML it is either a
// plain entity id or a mapping with entity and name.
type EntityConfig struct {
	Entity string `yaml:"entity" validate:"required"`
	Name   string `yaml:"name,omitempty"`
}

// UnmarshalYAML accepts both the short and the mapping form.
func (e *EntityConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&e.Entity)
	}
	type plain EntityConfig
	return node.Decode((*plain)(e))
}

// GraphConfig is a statistics graph card configuration.
type GraphConfig struct {
	Type     string         `yaml:"type,omitempty"`
	Title    string         `yaml:"title,omitempty"`
	Period   string         `yaml:"period,omitempty" validate:"omitempty,oneof=5minute hour day week month"`
	Entities []EntityConfig `yaml:"entities"         validate:"dive"`
}

// ParseGraphConfig decodes and validates a card configuration.
func ParseGraphConfig(content []byte) (*GraphConfig, error) {
	var doc struct {
		Entities yaml.Node `yaml:"entities"`
	}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, errors.ErrInvalidYAML(err)
	}
	if doc.Entities.Kind != yaml.SequenceNode {
		return nil, errors.ErrInvalidConfig("entities", "entities need to be a list")
	}

	var cfg GraphConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, errors.ErrInvalidYAML(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadGraphConfig reads and parses a card configuration file.
func LoadGraphConfig(path string) (*GraphConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrorTypeNotFound, err, "cannot read card config %s", path)
	}
	cfg, err := ParseGraphConfig(content)
	if err != nil {
		if e, ok := err.(*errors.Error); ok && e.Path == "" {
			return nil, e.WithPath(path)
		}
		return nil, err
	}
	return cfg, nil
}

// Validate fails when the card has no entities or an entry has no entity id.
func (g *GraphConfig) Validate() error {
	if len(g.Entities) == 0 {
		return errors.ErrNoEntities()
	}
	return validateStruct(g)
}

// EntityIDs returns the configured entity ids in order.
func (g *GraphConfig) EntityIDs() []string {
	return lo.Map(g.Entities, func(e EntityConfig, _ int) string { return e.Entity })
}

// Names maps entity ids to their configured display names.
func (g *GraphConfig) Names() map[string]string {
	named := lo.Filter(g.Entities, func(e EntityConfig, _ int) bool { return e.Name != "" })
	return lo.SliceToMap(named, func(e EntityConfig) (string, string) { return e.Entity, e.Name })
}

// CardSize is the card height in rows.
func (g *GraphConfig) CardSize() int {
	if g.Title != "" {
		return 2
	}
	return 2 * max(len(g.Entities), 1)
}
