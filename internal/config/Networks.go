package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TrackedNetwork is one entry of the networks file.
type TrackedNetwork struct {
	Name          string `yaml:"name"`
	ChainID       int64  `yaml:"chain_id"`
	ProjectID     uint64 `yaml:"project_id"`
	TokenSymbol   string `yaml:"token_symbol"`
	TokenDecimals int    `yaml:"token_decimals"`
	// SubgraphURL overrides the global endpoint for this chain.
	SubgraphURL string `yaml:"subgraph_url"`
}

type networksFile struct {
	Networks []TrackedNetwork `yaml:"networks"`
	// Names labels well-known addresses such as treasury multisigs.
	Names map[string]string `yaml:"names"`
}

// LoadNetworks reads the tracked networks from a YAML file. Token decimals default to 18.
func LoadNetworks(path string) ([]TrackedNetwork, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read networks: %w", err)
	}

	var f networksFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse networks: %w", err)
	}

	seen := make(map[string]bool, len(f.Networks))
	for i := range f.Networks {
		n := &f.Networks[i]
		if n.ChainID <= 0 || n.ProjectID == 0 {
			return nil, fmt.Errorf("networks[%d]: chain_id and project_id are required", i)
		}
		key := fmt.Sprintf("%d:%d", n.ChainID, n.ProjectID)
		if seen[key] {
			return nil, fmt.Errorf("networks[%d]: duplicate network %s", i, key)
		}
		seen[key] = true
		if n.TokenDecimals == 0 {
			n.TokenDecimals = 18
		}
		if n.Name == "" {
			n.Name = fmt.Sprintf("Revnet %d on %s", n.ProjectID, ChainName(n.ChainID))
		}
	}
	return f.Networks, nil
}

// LoadKnownNames reads the optional names section of the networks file, keyed by lowercase
// address.
func LoadKnownNames(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read networks: %w", err)
	}

	var f networksFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse networks: %w", err)
	}

	names := make(map[string]string, len(f.Names))
	for addr, name := range f.Names {
		names[strings.ToLower(strings.TrimSpace(addr))] = name
	}
	return names, nil
}
