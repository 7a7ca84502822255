// Package capkvconfig loads an optional YAML zone-layout file and
// validates it against an embedded JSON Schema before handing the zone
// roots to CallerResolver/CredentialRegistry construction.
//
// Grounded on opal-lang-opal/core/types/validation.go's use of
// github.com/santhosh-tekuri/jsonschema/v5 (NewCompiler, AddResource,
// Compile), here applied to a small static schema instead of a
// per-call dynamically converted one, and on the corpus-wide use of
// gopkg.in/yaml.v3 for config files.
package capkvconfig

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/capkv/capkv/internal/capkverr"
)

const schemaDoc = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["zones"],
  "properties": {
    "zones": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["path"],
        "properties": {
          "path": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

const schemaURL = "capkv://config-schema.json"

// Zone is one entry of the zones list.
type Zone struct {
	Path string `yaml:"path"`
}

// Config is the parsed, schema-validated contents of a zone-layout file.
type Config struct {
	Zones []Zone `yaml:"zones"`
}

// ZoneRoots returns the configured zone paths in file order, the shape
// CallerResolver.New and registry.New expect.
func (c *Config) ZoneRoots() []string {
	roots := make([]string, 0, len(c.Zones))
	for _, z := range c.Zones {
		roots = append(roots, z.Path)
	}
	return roots
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaDoc)); err != nil {
		return nil, capkverr.Wrap(err, "failed to load config schema")
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, capkverr.Wrap(err, "failed to compile config schema")
	}
	return schema, nil
}

// Load reads, parses, and schema-validates the YAML zone-layout file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, capkverr.ConfigurationError("cannot read config file %q: %v", path, err)
	}
	return Parse(raw)
}

// Parse validates and decodes raw YAML bytes into a Config.
func Parse(raw []byte) (*Config, error) {
	var generic interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, capkverr.ConfigurationError("invalid YAML: %v", err)
	}

	// jsonschema validates decoded JSON-shaped values (map[string]interface{}),
	// not YAML nodes directly, so round-trip through JSON.
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return nil, capkverr.ConfigurationError("cannot normalize config for validation: %v", err)
	}
	var doc interface{}
	if err := json.Unmarshal(asJSON, &doc); err != nil {
		return nil, capkverr.ConfigurationError("cannot normalize config for validation: %v", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, capkverr.ConfigurationError("config failed schema validation: %v", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, capkverr.ConfigurationError("invalid YAML: %v", err)
	}
	if len(cfg.Zones) == 0 {
		return nil, capkverr.ConfigurationError("config must declare at least one zone")
	}
	return &cfg, nil
}
