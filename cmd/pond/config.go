// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// cliConfig is the optional JSONC configuration file loaded with
// --config. Flags take precedence over file values. There is no
// config discovery: the file is read only when named explicitly.
type cliConfig struct {
	// StoreDir is the filesystem directory the store is rooted at.
	StoreDir string `json:"store_dir"`

	// StoreID is the store identifier used in version URIs.
	StoreID string `json:"store_id"`

	// Location is the root location inside the store, typically a
	// project or experiment name.
	Location string `json:"location"`

	// Author is recorded in the activity section of written
	// manifests.
	Author string `json:"author"`

	// Source identifies this CLI invocation in provenance metadata.
	Source string `json:"source"`
}

// loadConfig reads and parses a JSONC config file. Comments and
// trailing commas are allowed.
func loadConfig(path string) (cliConfig, error) {
	var cfg cliConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(jsonc.ToJSON(raw), &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
