// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

// Package versionedartifact manages the version ledger of one
// artifact: the full list of version names ever created, the binding
// record fixing the artifact's codec and naming family, and the
// write/read/delete operations over versions.
//
// Layout for artifact "name" under root "R":
//
//	R/name/versions.json       ledger, sorted JSON array of names
//	R/name/manifest.yml        binding record (codec, family)
//	R/name/<v>/                one version (see lib/version)
//	R/name/_pond/_VERSIONS_LOCK  advisory lock marker
//
// The ledger file is read-modify-write with no optimistic concurrency
// control: concurrent writers race and the last writer wins. The
// advisory lock taken while reserving a fresh version name is a
// best-effort hint with a single retry, not a mutual-exclusion
// guarantee. Callers that need stronger guarantees must serialize
// writes themselves.
package versionedartifact

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pond-foundation/pond/lib/artifact"
	"github.com/pond-foundation/pond/lib/clock"
	"github.com/pond-foundation/pond/lib/datastore"
	"github.com/pond-foundation/pond/lib/metadata"
	"github.com/pond-foundation/pond/lib/version"
	"github.com/pond-foundation/pond/lib/versionname"
)

// NewVersionWait is how long a writer waits before its single retry
// when the advisory lock marker is present.
const NewVersionWait = 1000 * time.Millisecond

// Ledger filenames under the artifact directory.
const (
	ledgerFilename       = "versions.json"
	versionsLockFilename = "_VERSIONS_LOCK"
)

// ErrVersionAlreadyExists is returned by Write in ErrorIfExists mode
// when the target version already exists. The error message carries
// the version's URI.
var ErrVersionAlreadyExists = errors.New("version already exists")

// ErrArtifactVersionsLocked is returned when the advisory lock marker
// is still present after the single retry.
var ErrArtifactVersionsLocked = errors.New("artifact versions are locked")

// ErrArtifactHasNoVersion is returned when latest-version resolution
// finds no existing version.
var ErrArtifactHasNoVersion = errors.New("artifact has no version")

// WriteMode selects the behavior of Write when the target version
// already exists.
type WriteMode string

const (
	// ErrorIfExists fails the write with ErrVersionAlreadyExists.
	// The default.
	ErrorIfExists WriteMode = "errorifexists"

	// Overwrite deletes the existing version subtree, then writes.
	Overwrite WriteMode = "overwrite"
)

// bindingRecord is the YAML document at R/name/manifest.yml fixing
// the artifact's codec and version-name family. It is written once,
// at first creation, and only ever read afterwards.
type bindingRecord struct {
	CodecClass        string `yaml:"codec_class"`
	VersionNameFamily string `yaml:"version_name_family"`
}

// Config carries the parameters for opening a ledger. Store, Root and
// ArtifactName are required. Codec and Family are required for a
// first creation and ignored when the artifact already exists on
// disk, where the stored binding record wins. Clock, Logger and
// Registry default to the real clock, slog.Default and the global
// codec registry.
type Config struct {
	Store        datastore.Datastore
	Root         string
	ArtifactName string
	Codec        artifact.Codec
	Family       versionname.Family
	Clock        clock.Clock
	Logger       *slog.Logger
	Registry     *artifact.Registry
}

// Ledger owns the version list of one artifact. It exclusively owns
// ledger-file writes for its artifact; versions produced by Write and
// Read are owned by the caller.
type Ledger struct {
	store        datastore.Datastore
	root         string
	artifactName string
	codec        artifact.Codec
	family       versionname.Family
	clk          clock.Clock
	logger       *slog.Logger
}

// New opens the ledger for an artifact, materializing it on first
// access: if the artifact directory does not exist, it is created
// with an empty ledger and a binding record naming cfg.Codec and
// cfg.Family. If it does exist, the stored binding record is loaded
// and overrides whatever codec and family the caller passed: the
// binding is fixed at first creation.
func New(cfg Config) (*Ledger, error) {
	if cfg.Store == nil {
		return nil, errors.New("versionedartifact: Config.Store is required")
	}
	if cfg.ArtifactName == "" {
		return nil, errors.New("versionedartifact: Config.ArtifactName is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = artifact.DefaultRegistry
	}

	l := &Ledger{
		store:        cfg.Store,
		root:         cfg.Root,
		artifactName: cfg.ArtifactName,
		codec:        cfg.Codec,
		family:       cfg.Family,
		clk:          cfg.Clock,
		logger:       cfg.Logger,
	}

	present, err := l.store.Exists(l.artifactLocation())
	if err != nil {
		return nil, fmt.Errorf("checking artifact %s: %w", l.artifactName, err)
	}
	if !present {
		if l.codec == nil || l.family == nil {
			// No binding arguments and nothing on disk: this is a
			// read of an artifact that was never created.
			return nil, fmt.Errorf("artifact %s: %w: %s",
				l.artifactName, datastore.ErrNotFound, l.artifactLocation())
		}
		if err := l.store.MakeDirs(l.artifactLocation()); err != nil {
			return nil, fmt.Errorf("creating artifact %s: %w", l.artifactName, err)
		}
		if err := l.writeVersionNames(nil); err != nil {
			return nil, err
		}
		record := bindingRecord{
			CodecClass:        l.codec.Name(),
			VersionNameFamily: l.family.Tag(),
		}
		if err := datastore.WriteYAML(l.store, l.bindingLocation(), record); err != nil {
			return nil, fmt.Errorf("writing binding record for %s: %w", l.artifactName, err)
		}
		return l, nil
	}

	var record bindingRecord
	if err := datastore.ReadYAML(l.store, l.bindingLocation(), &record); err != nil {
		return nil, fmt.Errorf("reading binding record for %s: %w", l.artifactName, err)
	}
	codec, err := cfg.Registry.CodecByName(record.CodecClass)
	if err != nil {
		return nil, fmt.Errorf("binding record for %s: %w", l.artifactName, err)
	}
	family, err := versionname.FamilyByTag(record.VersionNameFamily)
	if err != nil {
		return nil, fmt.Errorf("binding record for %s: %w", l.artifactName, err)
	}
	l.codec = codec
	l.family = family
	return l, nil
}

// FromDatastore opens an existing artifact, resolving its codec and
// family entirely from the stored binding record.
func FromDatastore(store datastore.Datastore, root, artifactName string) (*Ledger, error) {
	return New(Config{Store: store, Root: root, ArtifactName: artifactName})
}

// ArtifactName returns the artifact's name.
func (l *Ledger) ArtifactName() string { return l.artifactName }

// Codec returns the codec bound to this artifact.
func (l *Ledger) Codec() artifact.Codec { return l.codec }

// Family returns the version-name family bound to this artifact.
func (l *Ledger) Family() versionname.Family { return l.family }

func (l *Ledger) artifactLocation() string {
	return version.ArtifactLocation(l.root, l.artifactName)
}

func (l *Ledger) ledgerLocation() string {
	return version.JoinPath(l.artifactLocation(), ledgerFilename)
}

func (l *Ledger) bindingLocation() string {
	return version.JoinPath(l.artifactLocation(), version.ManifestFilename)
}

func (l *Ledger) lockLocation() string {
	return version.JoinPath(l.artifactLocation(), version.MetadataDirname, versionsLockFilename)
}

// URI returns the stable identifier of the named version of this
// artifact.
func (l *Ledger) URI(name versionname.Name) string {
	return version.URI(l.store.ID(), l.root, l.artifactName, name)
}

// WriteOptions controls a single Write call. The zero value writes
// under a freshly reserved next version name in ErrorIfExists mode.
type WriteOptions struct {
	// VersionName, when non-empty, is the explicit name to write.
	// When empty the ledger reserves the family's next name.
	VersionName string

	// Mode selects the collision behavior; empty means ErrorIfExists.
	Mode WriteMode
}

// Write persists data as a new version of the artifact. The
// manifest's "user" section, when present, becomes the artifact's
// user metadata; a nil manifest is treated as empty. The written name
// is registered in the ledger (idempotently) and the written version
// is returned.
//
// With no explicit name, the next name is derived from the greatest
// name in the ledger, reserved names included, under a best-effort
// advisory lock. An explicit name must parse under the artifact's
// bound family; a name of another family fails with
// ErrIncompatibleVersionName.
func (l *Ledger) Write(data any, manifest *metadata.Manifest, opts WriteOptions) (*version.Version, error) {
	if manifest == nil {
		manifest = metadata.NewManifest()
	}
	mode := opts.Mode
	switch mode {
	case "":
		mode = ErrorIfExists
	case ErrorIfExists, Overwrite:
	default:
		return nil, fmt.Errorf("unknown write mode %q", mode)
	}

	var name versionname.Name
	var err error
	if opts.VersionName == "" {
		name, err = l.reserveNextName()
	} else {
		name, err = l.parseBoundName(opts.VersionName)
	}
	if err != nil {
		return nil, err
	}

	userSection, err := manifest.CollectSection("user", nil)
	if err != nil {
		return nil, err
	}
	art, err := l.codec.New(data, userSection)
	if err != nil {
		return nil, fmt.Errorf("wrapping data for %s %s: %w", l.artifactName, name, err)
	}
	v := version.New(l.artifactName, name, l.codec, art)

	present, err := v.Exists(l.root, l.store)
	if err != nil {
		return nil, fmt.Errorf("checking %s %s: %w", l.artifactName, name, err)
	}
	if present {
		if mode == ErrorIfExists {
			return nil, fmt.Errorf("%w: %s", ErrVersionAlreadyExists, l.URI(name))
		}
		l.logger.Info("deleting existing version before overwriting",
			"uri", l.URI(name))
		location := version.Location(l.root, l.artifactName, name)
		if err := l.store.Delete(location, true); err != nil {
			return nil, fmt.Errorf("deleting %s %s: %w", l.artifactName, name, err)
		}
	}

	if err := v.Write(l.root, l.store, manifest, l.clk); err != nil {
		return nil, err
	}
	if err := l.registerVersionName(name); err != nil {
		return nil, err
	}
	return v, nil
}

// Read loads a version of the artifact. An empty versionName resolves
// the latest existing version; resolution fails with
// ErrArtifactHasNoVersion when none exists.
func (l *Ledger) Read(versionName string) (*version.Version, error) {
	var name versionname.Name
	var err error
	if versionName == "" {
		name, err = l.LatestVersionName()
	} else {
		name, err = l.family.Parse(versionName)
	}
	if err != nil {
		return nil, err
	}
	return version.Read(l.store, l.root, l.artifactName, name, l.codec)
}

// ReadManifest loads the manifest document of a version without
// decoding its data. An empty versionName resolves the latest
// existing version.
func (l *Ledger) ReadManifest(versionName string) (*metadata.Manifest, error) {
	var name versionname.Name
	var err error
	if versionName == "" {
		name, err = l.LatestVersionName()
	} else {
		name, err = l.family.Parse(versionName)
	}
	if err != nil {
		return nil, err
	}
	return version.ReadManifest(l.store, l.root, l.artifactName, name)
}

// AllVersionNames returns every name in the ledger, sorted. Names can
// be registered without the version existing yet (reserved after a
// crash mid-write); this list includes them. A missing ledger file
// reads as empty.
func (l *Ledger) AllVersionNames() ([]versionname.Name, error) {
	var raw []string
	if err := datastore.ReadJSON(l.store, l.ledgerLocation(), &raw); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading ledger for %s: %w", l.artifactName, err)
	}
	names := make([]versionname.Name, 0, len(raw))
	for _, text := range raw {
		name, err := l.family.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("ledger for %s: %w", l.artifactName, err)
		}
		names = append(names, name)
	}
	versionname.Sort(names)
	return names, nil
}

// VersionNames returns the names of versions that actually exist,
// sorted. A ledger entry whose manifest document is absent is
// reserved, not existing, and is skipped.
func (l *Ledger) VersionNames() ([]versionname.Name, error) {
	all, err := l.AllVersionNames()
	if err != nil {
		return nil, err
	}
	existing := make([]versionname.Name, 0, len(all))
	for _, name := range all {
		present, err := version.Exists(l.store, l.root, l.artifactName, name)
		if err != nil {
			return nil, fmt.Errorf("checking %s %s: %w", l.artifactName, name, err)
		}
		if present {
			existing = append(existing, name)
		}
	}
	return existing, nil
}

// LatestVersionName returns the greatest existing version name, or
// ErrArtifactHasNoVersion when the artifact has none.
func (l *Ledger) LatestVersionName() (versionname.Name, error) {
	existing, err := l.VersionNames()
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrArtifactHasNoVersion, l.artifactLocation())
	}
	return existing[len(existing)-1], nil
}

// LatestVersion loads the latest existing version.
func (l *Ledger) LatestVersion() (*version.Version, error) {
	return l.Read("")
}

// DeleteVersion removes a version's storage subtree and its ledger
// entry. It never fails because the version did not exist.
func (l *Ledger) DeleteVersion(versionName string) error {
	name, err := l.family.Parse(versionName)
	if err != nil {
		return err
	}
	location := version.Location(l.root, l.artifactName, name)
	if err := l.store.Delete(location, true); err != nil {
		return fmt.Errorf("deleting %s %s: %w", l.artifactName, name, err)
	}

	all, err := l.AllVersionNames()
	if err != nil {
		return err
	}
	kept := make([]versionname.Name, 0, len(all))
	for _, existing := range all {
		if versionname.Compare(existing, name) != 0 {
			kept = append(kept, existing)
		}
	}
	if len(kept) != len(all) {
		return l.writeVersionNames(kept)
	}
	return nil
}

// reserveNextName derives and registers the family's next version
// name under the advisory lock. The lock marker is checked once and,
// if present, rechecked once after NewVersionWait; a marker still
// present then fails the write. The marker is removed when
// reservation finishes, whatever the outcome.
func (l *Ledger) reserveNextName() (versionname.Name, error) {
	lockPath := l.lockLocation()
	for attempt := 0; ; attempt++ {
		present, err := l.store.Exists(lockPath)
		if err != nil {
			return nil, fmt.Errorf("checking lock for %s: %w", l.artifactName, err)
		}
		if !present {
			break
		}
		if attempt > 0 {
			return nil, fmt.Errorf("%w: %s", ErrArtifactVersionsLocked, l.artifactLocation())
		}
		l.clk.Sleep(NewVersionWait)
	}

	// Check and write are not atomic: two writers can both pass the
	// check and reserve the same name. The lock is advisory only.
	if err := datastore.WriteString(l.store, lockPath, ""); err != nil {
		return nil, fmt.Errorf("writing lock for %s: %w", l.artifactName, err)
	}
	defer func() {
		if err := l.store.Delete(lockPath, false); err != nil {
			l.logger.Warn("failed to remove version lock marker",
				"artifact", l.artifactName, "error", err)
		}
	}()

	names, err := l.AllVersionNames()
	if err != nil {
		return nil, err
	}
	var name versionname.Name
	if len(names) == 0 {
		name = l.family.First(l.clk)
	} else {
		name, err = l.family.Next(names[len(names)-1], l.clk)
		if err != nil {
			return nil, err
		}
	}
	if err := l.registerVersionName(name); err != nil {
		return nil, err
	}
	return name, nil
}

// parseBoundName parses an explicit version name against the bound
// family. A name that parses under another registered family fails
// with ErrIncompatibleVersionName; a name no family accepts fails
// with ErrInvalidVersionName.
func (l *Ledger) parseBoundName(text string) (versionname.Name, error) {
	name, err := l.family.Parse(text)
	if err == nil {
		return name, nil
	}
	if foreign, foreignErr := versionname.Parse(text); foreignErr == nil {
		return nil, fmt.Errorf("%w: %q is a %s name, artifact %s uses %s names",
			versionname.ErrIncompatibleVersionName, text, foreign.Family(),
			l.artifactName, l.family.Tag())
	}
	return nil, err
}

// registerVersionName adds a name to the ledger if absent and
// rewrites the ledger file sorted. Re-registering is a no-op.
func (l *Ledger) registerVersionName(name versionname.Name) error {
	names, err := l.AllVersionNames()
	if err != nil {
		return err
	}
	for _, existing := range names {
		if versionname.Compare(existing, name) == 0 {
			return nil
		}
	}
	names = append(names, name)
	return l.writeVersionNames(names)
}

// writeVersionNames rewrites the ledger file: sorted, as a JSON array
// of name strings. An empty ledger is written as an empty array.
func (l *Ledger) writeVersionNames(names []versionname.Name) error {
	versionname.Sort(names)
	rendered := make([]string, len(names))
	for i, name := range names {
		rendered[i] = name.String()
	}
	if err := datastore.WriteJSON(l.store, l.ledgerLocation(), rendered); err != nil {
		return fmt.Errorf("writing ledger for %s: %w", l.artifactName, err)
	}
	return nil
}
