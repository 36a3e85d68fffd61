// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

// Command pond reads and writes versioned artifacts in a local file
// datastore.
//
//	pond write params --store-dir ./store --location demo --file params.json --kind dict
//	pond read params --store-dir ./store --location demo
//	pond versions params --store-dir ./store --location demo
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/pond-foundation/pond/lib/activity"
	"github.com/pond-foundation/pond/lib/datastore"
	"github.com/pond-foundation/pond/lib/versionedartifact"
	"github.com/pond-foundation/pond/lib/versionname"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := &command{
		Name:    "pond",
		Summary: "Versioned artifact storage.",
		Subcommands: []*command{
			writeCommand(),
			readCommand(),
			versionsCommand(),
			manifestCommand(),
			deleteCommand(),
		},
	}
	return root.Execute(os.Args[1:])
}

// storeOptions are the flags shared by every subcommand: where the
// store lives and the activity defaults. Flag values override the
// config file.
type storeOptions struct {
	configPath string
	storeDir   string
	storeID    string
	location   string
	author     string
	source     string
	family     string
	verbose    bool
}

func (o *storeOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "JSONC config file with store settings")
	fs.StringVar(&o.storeDir, "store-dir", "", "filesystem directory of the datastore")
	fs.StringVar(&o.storeID, "store-id", "", "store identifier used in version URIs (default \"pond\")")
	fs.StringVar(&o.location, "location", "", "root location inside the store, e.g. a project name")
	fs.StringVar(&o.author, "author", "", "author recorded in written manifests")
	fs.StringVar(&o.source, "source", "", "provenance source recorded in written manifests (default \"pond-cli\")")
	fs.StringVar(&o.family, "family", "", "version-name family for new artifacts: simple or datetime (default simple)")
	fs.BoolVar(&o.verbose, "verbose", false, "enable debug logging")
}

// activity resolves the options into a ready Activity over a file
// datastore.
func (o *storeOptions) activity() (*activity.Activity, error) {
	merged := cliConfig{}
	if o.configPath != "" {
		loaded, err := loadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		merged = loaded
	}
	if o.storeDir != "" {
		merged.StoreDir = o.storeDir
	}
	if o.storeID != "" {
		merged.StoreID = o.storeID
	}
	if o.location != "" {
		merged.Location = o.location
	}
	if o.author != "" {
		merged.Author = o.author
	}
	if o.source != "" {
		merged.Source = o.source
	}

	if merged.StoreDir == "" {
		return nil, fmt.Errorf("--store-dir is required (or store_dir in the config file)")
	}
	if merged.StoreID == "" {
		merged.StoreID = "pond"
	}
	if merged.Source == "" {
		merged.Source = "pond-cli"
	}

	var family versionname.Family
	switch o.family {
	case "", versionname.SimpleFamilyTag:
		family = versionname.SimpleFamily{}
	case versionname.DatetimeFamilyTag:
		family = versionname.DatetimeFamily{}
	default:
		return nil, fmt.Errorf("unknown version-name family %q", o.family)
	}

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, err := datastore.NewFileDatastore(merged.StoreID, merged.StoreDir)
	if err != nil {
		return nil, err
	}
	return activity.New(activity.Config{
		Source:   merged.Source,
		Location: merged.Location,
		Store:    store,
		Author:   merged.Author,
		Family:   family,
		Logger:   logger,
	})
}

// ledger opens the ledger of an existing artifact for the
// version-listing and delete commands.
func (o *storeOptions) ledger(artifactName string) (*versionedartifact.Ledger, error) {
	merged := cliConfig{}
	if o.configPath != "" {
		loaded, err := loadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		merged = loaded
	}
	if o.storeDir != "" {
		merged.StoreDir = o.storeDir
	}
	if o.storeID != "" {
		merged.StoreID = o.storeID
	}
	if o.location != "" {
		merged.Location = o.location
	}
	if merged.StoreDir == "" {
		return nil, fmt.Errorf("--store-dir is required (or store_dir in the config file)")
	}
	if merged.StoreID == "" {
		merged.StoreID = "pond"
	}

	store, err := datastore.NewFileDatastore(merged.StoreID, merged.StoreDir)
	if err != nil {
		return nil, err
	}
	return versionedartifact.FromDatastore(store, merged.Location, artifactName)
}

// artifactNameArg extracts the single required positional argument.
func artifactNameArg(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected exactly one artifact name, got %d arguments", len(args))
	}
	return args[0], nil
}
