// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

// Package activity is the high-level entry point for reading and
// writing versioned artifacts with provenance tracking.
//
// An Activity carries the defaults of one unit of work (a script, a
// notebook, a pipeline stage): the data store, the root location, the
// author, the write mode, and the version-name family for new
// artifacts. Every read records the version's URI; every write stamps
// an "activity" manifest section naming the source, the author, and
// the URIs read so far, so written artifacts carry their lineage.
package activity

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/pond-foundation/pond/lib/artifact"
	"github.com/pond-foundation/pond/lib/clock"
	"github.com/pond-foundation/pond/lib/datastore"
	"github.com/pond-foundation/pond/lib/metadata"
	"github.com/pond-foundation/pond/lib/version"
	"github.com/pond-foundation/pond/lib/versionedartifact"
	"github.com/pond-foundation/pond/lib/versionname"
)

// Config carries the defaults of one activity. Store is required;
// Source identifies where reads and writes are made (a script path, a
// notebook name) and should be set for meaningful lineage. The
// remaining fields default to: Location "", WriteMode ErrorIfExists,
// Author "NA", the simple version-name family, the global codec
// registry, the real clock, and slog.Default.
type Config struct {
	Source    string
	Location  string
	Store     datastore.Datastore
	WriteMode versionedartifact.WriteMode
	Author    string
	Family    versionname.Family
	Registry  *artifact.Registry
	Clock     clock.Clock
	Logger    *slog.Logger
}

// Activity reads and writes versioned artifacts with shared defaults
// and an in-memory read/write history. It is safe for concurrent use.
type Activity struct {
	source    string
	location  string
	store     datastore.Datastore
	writeMode versionedartifact.WriteMode
	author    string
	family    versionname.Family
	registry  *artifact.Registry
	clk       clock.Clock
	logger    *slog.Logger

	mu           sync.Mutex
	readHistory  map[string]struct{}
	writeHistory map[string]struct{}
}

// New builds an activity from cfg, applying defaults for unset
// fields.
func New(cfg Config) (*Activity, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("activity: Config.Store is required")
	}
	if cfg.WriteMode == "" {
		cfg.WriteMode = versionedartifact.ErrorIfExists
	}
	if cfg.Author == "" {
		cfg.Author = "NA"
	}
	if cfg.Family == nil {
		cfg.Family = versionname.SimpleFamily{}
	}
	if cfg.Registry == nil {
		cfg.Registry = artifact.DefaultRegistry
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Activity{
		source:       cfg.Source,
		location:     cfg.Location,
		store:        cfg.Store,
		writeMode:    cfg.WriteMode,
		author:       cfg.Author,
		family:       cfg.Family,
		registry:     cfg.Registry,
		clk:          cfg.Clock,
		logger:       cfg.Logger,
		readHistory:  make(map[string]struct{}),
		writeHistory: make(map[string]struct{}),
	}, nil
}

// Location returns the activity's root location inside the store.
func (a *Activity) Location() string { return a.location }

// Store returns the activity's datastore.
func (a *Activity) Store() datastore.Datastore { return a.store }

// ReadVersion loads a version of the named artifact and records its
// URI in the read history. An empty versionName loads the latest
// existing version.
func (a *Activity) ReadVersion(name, versionName string) (*version.Version, error) {
	ledger, err := a.openLedger(name)
	if err != nil {
		return nil, err
	}
	v, err := ledger.Read(versionName)
	if err != nil {
		return nil, err
	}

	uri := v.URI(a.location, a.store)
	a.mu.Lock()
	a.readHistory[uri] = struct{}{}
	a.mu.Unlock()
	a.logger.Debug("read version", "uri", uri)
	return v, nil
}

// ReadArtifact loads the codec-wrapped artifact (data plus user
// metadata) of a version.
func (a *Activity) ReadArtifact(name, versionName string) (artifact.Artifact, error) {
	v, err := a.ReadVersion(name, versionName)
	if err != nil {
		return nil, err
	}
	return v.Artifact, nil
}

// Read loads the data of a version, discarding metadata.
func (a *Activity) Read(name, versionName string) (any, error) {
	art, err := a.ReadArtifact(name, versionName)
	if err != nil {
		return nil, err
	}
	return art.Data(), nil
}

// ReadManifest loads the manifest of a version without decoding its
// data. Reading a manifest is not recorded in the read history: no
// artifact data was consumed.
func (a *Activity) ReadManifest(name, versionName string) (*metadata.Manifest, error) {
	ledger, err := a.openLedger(name)
	if err != nil {
		return nil, err
	}
	return ledger.ReadManifest(versionName)
}

// WriteOptions controls one Write call beyond the activity's
// defaults. The zero value writes a fresh version under the next name
// with the activity's write mode, picking the codec from the data's
// kind.
type WriteOptions struct {
	// VersionName, when non-empty, is the explicit name to write.
	VersionName string

	// Metadata is the user metadata stored with the artifact as the
	// manifest's "user" section.
	Metadata metadata.Section

	// Mode overrides the activity's default write mode.
	Mode versionedartifact.WriteMode

	// Format selects a specific codec format for the data's kind
	// (for instance "csv" for tables). Empty means the kind's
	// default codec.
	Format string

	// Codec bypasses registry lookup entirely.
	Codec artifact.Codec

	// Sources are additional metadata sources contributing their
	// own manifest sections, such as a git provenance source.
	Sources []metadata.Source
}

// Write stores data as a new version of the named artifact and
// records the written URI in the write history. The manifest gains a
// "user" section when opts.Metadata is set, and always an "activity"
// section carrying the activity's source, author, and the sorted URIs
// read so far.
func (a *Activity) Write(data any, name string, opts WriteOptions) (*version.Version, error) {
	codec := opts.Codec
	if codec == nil {
		kind, err := artifact.KindOf(data)
		if err != nil {
			return nil, err
		}
		codec, err = a.registry.Lookup(kind, opts.Format)
		if err != nil {
			return nil, err
		}
	}
	mode := opts.Mode
	if mode == "" {
		mode = a.writeMode
	}

	ledger, err := versionedartifact.New(versionedartifact.Config{
		Store:        a.store,
		Root:         a.location,
		ArtifactName: name,
		Codec:        codec,
		Family:       a.family,
		Clock:        a.clk,
		Logger:       a.logger,
		Registry:     a.registry,
	})
	if err != nil {
		return nil, err
	}

	manifest := metadata.NewManifest()
	if opts.Metadata != nil {
		manifest.AddSection(metadata.NewDictSource("user", opts.Metadata))
	}
	for _, source := range opts.Sources {
		manifest.AddSection(source)
	}
	manifest.AddSection(a.metadataSource())

	v, err := ledger.Write(data, manifest, versionedartifact.WriteOptions{
		VersionName: opts.VersionName,
		Mode:        mode,
	})
	if err != nil {
		return nil, err
	}

	uri := v.URI(a.location, a.store)
	a.mu.Lock()
	a.writeHistory[uri] = struct{}{}
	a.mu.Unlock()
	a.logger.Debug("wrote version", "uri", uri)
	return v, nil
}

// ReadHistory returns the sorted URIs of all versions read so far.
func (a *Activity) ReadHistory() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return sortedKeys(a.readHistory)
}

// WriteHistory returns the sorted URIs of all versions written so
// far.
func (a *Activity) WriteHistory() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return sortedKeys(a.writeHistory)
}

// ResetHistory clears both histories. Useful when one activity
// instance spans several independent units of work.
func (a *Activity) ResetHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.readHistory = make(map[string]struct{})
	a.writeHistory = make(map[string]struct{})
}

// metadataSource builds the "activity" manifest section: the source,
// the author, and the sorted URIs read so far as inputs.
func (a *Activity) metadataSource() metadata.Source {
	return metadata.NewDictSource("activity", metadata.Section{
		"source": a.source,
		"author": a.author,
		"inputs": a.ReadHistory(),
	})
}

func (a *Activity) openLedger(name string) (*versionedartifact.Ledger, error) {
	return versionedartifact.New(versionedartifact.Config{
		Store:        a.store,
		Root:         a.location,
		ArtifactName: name,
		Clock:        a.clk,
		Logger:       a.logger,
		Registry:     a.registry,
	})
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
