// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"

	"github.com/pond-foundation/pond/lib/versionname"
)

// On-disk naming constants. These are part of the stored layout;
// changing them orphans existing artifacts.
const (
	// ManifestFilename is the name of every manifest document: the
	// binding record at the artifact root and the version manifest
	// under the version's metadata directory.
	ManifestFilename = "manifest.yml"

	// MetadataDirname is the directory holding bookkeeping files, as
	// opposed to artifact data.
	MetadataDirname = "_pond"
)

// JoinPath joins store path components with forward slashes,
// stripping trailing slashes from each part.
func JoinPath(parts ...string) string {
	trimmed := make([]string, len(parts))
	for i, part := range parts {
		trimmed[i] = strings.TrimRight(part, "/")
	}
	return strings.Join(trimmed, "/")
}

// ArtifactLocation returns the directory holding every version of the
// named artifact.
func ArtifactLocation(root, artifactName string) string {
	return JoinPath(root, artifactName)
}

// Location returns the directory holding one version of the named
// artifact.
func Location(root, artifactName string, name versionname.Name) string {
	return JoinPath(root, artifactName, name.String())
}

// manifestLocation returns the path of a version's manifest document
// relative to the version directory.
func manifestLocation(versionLocation string) string {
	return JoinPath(versionLocation, MetadataDirname, ManifestFilename)
}

// dataLocation returns the path of a version's data file.
func dataLocation(versionLocation, filename string) string {
	return JoinPath(versionLocation, filename)
}

// URI builds the stable identifier of one artifact version,
// "pond://<storeID>/<root>/<artifactName>/<versionName>". URIs are
// recorded in manifests and provenance histories and must not change
// form.
func URI(storeID, root, artifactName string, name versionname.Name) string {
	return "pond://" + JoinPath(storeID, root, artifactName, name.String())
}
