// Package localize provides translation catalogs and locale-aware number
// formatting for state labels.
package localize

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
)

//go:embed en.yaml
var defaultCatalog []byte

// Catalog maps flattened translation keys ("component.light.state._.on") to
// display strings. It is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	language string
	messages map[string]string
}

// New creates a catalog for a language from already-flattened messages.
func New(language string, messages map[string]string) *Catalog {
	c := &Catalog{
		language: language,
		messages: make(map[string]string, len(messages)),
	}
	maps.Copy(c.messages, messages)
	return c
}

// Default returns the built-in English catalog.
func Default() *Catalog {
	messages, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("localize: built-in catalog: %v", err))
	}
	return New("en", messages)
}

// Load returns the built-in catalog overlaid with the translations in path.
// An empty path returns the built-in catalog.
func Load(language, path string) (*Catalog, error) {
	c := Default()
	if language != "" {
		c.language = language
	}
	if path == "" {
		return c, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrorTypeNotFound, err, "read translations %s", path)
	}
	messages, err := Parse(content)
	if err != nil {
		return nil, errors.ErrInvalidYAML(err).WithPath(path)
	}
	c.Merge(messages)
	return c, nil
}

// Parse decodes a nested YAML translation document into flattened keys.
// Non-string leaves are rendered with fmt.
func Parse(content []byte) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	flatten("", doc, out)
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case map[any]any:
			nested := make(map[string]any, len(val))
			for nk, nv := range val {
				nested[fmt.Sprint(nk)] = nv
			}
			flatten(key, nested, out)
		case nil:
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Merge adds messages to the catalog, replacing existing keys.
func (c *Catalog) Merge(messages map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	maps.Copy(c.messages, messages)
}

// Localize returns the message for key, or "" when the key is unknown.
func (c *Catalog) Localize(key string) string {
	if c == nil {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.messages[key]
}

// Language returns the catalog language.
func (c *Catalog) Language() string {
	return c.language
}

// Keys returns all message keys, sorted.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.messages))
	for k := range c.messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
