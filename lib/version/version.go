// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

// Package version persists and loads one snapshot of an artifact: its
// data file, rendered by the artifact's codec, and the manifest
// document describing it.
//
// A version exists exactly when its manifest document exists. The
// data file alone means nothing: a crash between writing data and
// manifest leaves a version that does not exist, which readers skip.
package version

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pond-foundation/pond/lib/artifact"
	"github.com/pond-foundation/pond/lib/clock"
	"github.com/pond-foundation/pond/lib/datastore"
	"github.com/pond-foundation/pond/lib/metadata"
	"github.com/pond-foundation/pond/lib/versionname"
)

// ErrVersionDoesNotExist is returned when a requested version has no
// manifest document.
var ErrVersionDoesNotExist = errors.New("version does not exist")

// Version is one persisted snapshot of an artifact: a name, the
// codec-wrapped data, and (after a write or read) the manifest
// describing it. A version is immutable once constructed; a new write
// creates a new Version.
type Version struct {
	// ArtifactName is the name of the artifact this version belongs
	// to.
	ArtifactName string

	// Name identifies this version within the artifact.
	Name versionname.Name

	// Codec renders the artifact's data to bytes and back.
	Codec artifact.Codec

	// Artifact wraps the in-memory data and its user metadata.
	Artifact artifact.Artifact

	// Manifest is the stored manifest. It is populated by Write and
	// Read; a freshly constructed, unwritten version has none.
	Manifest *metadata.Manifest
}

// New builds an unwritten version around codec-wrapped data.
func New(artifactName string, name versionname.Name, codec artifact.Codec, art artifact.Artifact) *Version {
	return &Version{
		ArtifactName: artifactName,
		Name:         name,
		Codec:        codec,
		Artifact:     art,
	}
}

// filename returns the canonical data filename for this version,
// "<artifact>_<version>" completed with the codec's extension.
func (v *Version) filename() string {
	return v.Codec.Filename(v.ArtifactName + "_" + v.Name.String())
}

// URI returns the stable identifier of this version in the given
// store and root location.
func (v *Version) URI(root string, store datastore.Datastore) string {
	return URI(store.ID(), root, v.ArtifactName, v.Name)
}

// Exists reports whether this version exists in the store: solely
// whether its manifest document is present.
func (v *Version) Exists(root string, store datastore.Datastore) (bool, error) {
	return Exists(store, root, v.ArtifactName, v.Name)
}

// Exists reports whether the named version of the named artifact
// exists, defined solely by the presence of its manifest document.
func Exists(store datastore.Datastore, root, artifactName string, name versionname.Name) (bool, error) {
	return store.Exists(manifestLocation(Location(root, artifactName, name)))
}

// Write persists the version under root: the manifest first gains a
// "version" section (URI, stored filename, write time, artifact name)
// and, when the codec supplies one, an "artifact" section carrying at
// least the content hash; then manifest and data are stored. The
// version retains the written manifest so callers can inspect URI and
// hash without a re-read.
func (v *Version) Write(root string, store datastore.Datastore, manifest *metadata.Manifest, clk clock.Clock) error {
	location := Location(root, v.ArtifactName, v.Name)
	filename := v.filename()

	manifest.AddSection(metadata.NewDictSource("version", metadata.Section{
		"uri":           v.URI(root, store),
		"filename":      filename,
		"date_time":     clk.Now(),
		"artifact_name": v.ArtifactName,
	}))
	if artifactMeta := v.Artifact.ArtifactMetadata(); artifactMeta != nil {
		manifest.AddSection(metadata.NewDictSource("artifact", artifactMeta))
	}
	if err := manifest.Write(store, manifestLocation(location)); err != nil {
		return fmt.Errorf("writing manifest for %s %s: %w", v.ArtifactName, v.Name, err)
	}

	var data bytes.Buffer
	if err := v.Artifact.WriteBytes(&data, nil); err != nil {
		return fmt.Errorf("serializing %s %s: %w", v.ArtifactName, v.Name, err)
	}
	if err := store.Write(dataLocation(location, filename), data.Bytes()); err != nil {
		return fmt.Errorf("writing data for %s %s: %w", v.ArtifactName, v.Name, err)
	}

	v.Manifest = manifest
	return nil
}

// ReadManifest loads the manifest document of a version without
// decoding its data. It fails with ErrVersionDoesNotExist when the
// manifest document is absent.
func ReadManifest(store datastore.Datastore, root, artifactName string, name versionname.Name) (*metadata.Manifest, error) {
	location := manifestLocation(Location(root, artifactName, name))

	present, err := store.Exists(location)
	if err != nil {
		return nil, fmt.Errorf("checking %s %s: %w", artifactName, name, err)
	}
	if !present {
		return nil, fmt.Errorf("%w: %s %s", ErrVersionDoesNotExist, artifactName, name)
	}

	manifest, err := metadata.ReadManifest(store, location)
	if err != nil {
		return nil, fmt.Errorf("reading manifest for %s %s: %w", artifactName, name, err)
	}
	return manifest, nil
}

// Read loads a version of the named artifact. It fails with
// ErrVersionDoesNotExist when the manifest document is absent. The
// manifest's "user" section is handed to the codec as the
// authoritative metadata, overriding anything embedded in the data
// bytes.
func Read(store datastore.Datastore, root, artifactName string, name versionname.Name, codec artifact.Codec) (*Version, error) {
	location := Location(root, artifactName, name)

	manifest, err := ReadManifest(store, root, artifactName, name)
	if err != nil {
		return nil, err
	}
	versionSection, err := manifest.CollectSection("version", nil)
	if err != nil {
		return nil, err
	}
	filename, ok := versionSection["filename"].(string)
	if !ok {
		return nil, fmt.Errorf("manifest for %s %s has no stored filename", artifactName, name)
	}
	if stored, ok := versionSection["artifact_name"].(string); ok {
		artifactName = stored
	}

	userSection, err := manifest.CollectSection("user", nil)
	if err != nil {
		return nil, err
	}

	data, err := store.Read(dataLocation(location, filename))
	if err != nil {
		return nil, fmt.Errorf("reading data for %s %s: %w", artifactName, name, err)
	}
	art, err := codec.ReadBytes(bytes.NewReader(data), userSection, nil)
	if err != nil {
		return nil, fmt.Errorf("decoding %s %s: %w", artifactName, name, err)
	}

	return &Version{
		ArtifactName: artifactName,
		Name:         name,
		Codec:        codec,
		Artifact:     art,
		Manifest:     manifest,
	}, nil
}
