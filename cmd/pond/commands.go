// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/pond-foundation/pond/lib/activity"
	"github.com/pond-foundation/pond/lib/artifact"
	"github.com/pond-foundation/pond/lib/metadata"
	"github.com/pond-foundation/pond/lib/versionedartifact"
)

func writeCommand() *command {
	opts := &storeOptions{}
	var (
		file        string
		kind        string
		format      string
		versionName string
		overwrite   bool
		meta        []string
		gitMeta     bool
	)
	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("write", pflag.ContinueOnError)
		opts.addFlags(fs)
		fs.StringVar(&file, "file", "", "file to read the artifact data from (default stdin)")
		fs.StringVar(&kind, "kind", "blob", "data kind: blob, dict (JSON file), or table (CSV file)")
		fs.StringVar(&format, "format", "", "codec format override for the data kind")
		fs.StringVar(&versionName, "version", "", "explicit version name (default: next available)")
		fs.BoolVar(&overwrite, "overwrite", false, "replace the version if it already exists")
		fs.StringArrayVar(&meta, "meta", nil, "user metadata entry, key=value (repeatable)")
		fs.BoolVar(&gitMeta, "git-meta", false, "record the current git commit in the manifest")
		return fs
	}
	run := func(args []string) error {
		name, err := artifactNameArg(args)
		if err != nil {
			return err
		}
		act, err := opts.activity()
		if err != nil {
			return err
		}

		raw, err := readInput(file)
		if err != nil {
			return err
		}
		data, err := decodeData(kind, raw)
		if err != nil {
			return err
		}
		userMeta, err := parseMetaFlags(meta)
		if err != nil {
			return err
		}

		writeOpts := activity.WriteOptions{
			VersionName: versionName,
			Metadata:    userMeta,
			Format:      format,
		}
		if overwrite {
			writeOpts.Mode = versionedartifact.Overwrite
		}
		if gitMeta {
			writeOpts.Sources = append(writeOpts.Sources, metadata.NewGitSource("."))
		}

		v, err := act.Write(data, name, writeOpts)
		if err != nil {
			return err
		}
		fmt.Println(v.URI(act.Location(), act.Store()))
		return nil
	}
	return &command{
		Name:    "write",
		Summary: "Write data as a new version of an artifact.",
		Usage:   "pond write <artifact-name> [flags]",
		Flags:   flags,
		Run:     run,
	}
}

func readCommand() *command {
	opts := &storeOptions{}
	var (
		versionName string
		output      string
	)
	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("read", pflag.ContinueOnError)
		opts.addFlags(fs)
		fs.StringVar(&versionName, "version", "", "version to read (default: latest)")
		fs.StringVar(&output, "output", "", "file to write the data to (default stdout)")
		return fs
	}
	run := func(args []string) error {
		name, err := artifactNameArg(args)
		if err != nil {
			return err
		}
		act, err := opts.activity()
		if err != nil {
			return err
		}
		data, err := act.Read(name, versionName)
		if err != nil {
			return err
		}
		rendered, err := renderData(data)
		if err != nil {
			return err
		}
		if output == "" {
			_, err = os.Stdout.Write(rendered)
			return err
		}
		return os.WriteFile(output, rendered, 0o644)
	}
	return &command{
		Name:    "read",
		Summary: "Read the data of an artifact version.",
		Usage:   "pond read <artifact-name> [flags]",
		Flags:   flags,
		Run:     run,
	}
}

func versionsCommand() *command {
	opts := &storeOptions{}
	var all bool
	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("versions", pflag.ContinueOnError)
		opts.addFlags(fs)
		fs.BoolVar(&all, "all", false, "include reserved names whose version was never written")
		return fs
	}
	run := func(args []string) error {
		name, err := artifactNameArg(args)
		if err != nil {
			return err
		}
		ledger, err := opts.ledger(name)
		if err != nil {
			return err
		}
		list := ledger.VersionNames
		if all {
			list = ledger.AllVersionNames
		}
		names, err := list()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	}
	return &command{
		Name:    "versions",
		Summary: "List the versions of an artifact.",
		Usage:   "pond versions <artifact-name> [flags]",
		Flags:   flags,
		Run:     run,
	}
}

func manifestCommand() *command {
	opts := &storeOptions{}
	var versionName string
	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("manifest", pflag.ContinueOnError)
		opts.addFlags(fs)
		fs.StringVar(&versionName, "version", "", "version to inspect (default: latest)")
		return fs
	}
	run := func(args []string) error {
		name, err := artifactNameArg(args)
		if err != nil {
			return err
		}
		ledger, err := opts.ledger(name)
		if err != nil {
			return err
		}
		manifest, err := ledger.ReadManifest(versionName)
		if err != nil {
			return err
		}
		nested, err := manifest.Collect()
		if err != nil {
			return err
		}
		rendered, err := yaml.Marshal(nested)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(rendered)
		return err
	}
	return &command{
		Name:    "manifest",
		Summary: "Print the manifest of an artifact version as YAML.",
		Usage:   "pond manifest <artifact-name> [flags]",
		Flags:   flags,
		Run:     run,
	}
}

func deleteCommand() *command {
	opts := &storeOptions{}
	var versionName string
	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("delete", pflag.ContinueOnError)
		opts.addFlags(fs)
		fs.StringVar(&versionName, "version", "", "version to delete (required)")
		return fs
	}
	run := func(args []string) error {
		name, err := artifactNameArg(args)
		if err != nil {
			return err
		}
		if versionName == "" {
			return fmt.Errorf("--version is required")
		}
		ledger, err := opts.ledger(name)
		if err != nil {
			return err
		}
		return ledger.DeleteVersion(versionName)
	}
	return &command{
		Name:    "delete",
		Summary: "Delete one version of an artifact.",
		Usage:   "pond delete <artifact-name> --version <name> [flags]",
		Flags:   flags,
		Run:     run,
	}
}

// readInput loads the artifact data bytes from a file or stdin.
func readInput(file string) ([]byte, error) {
	if file == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return raw, nil
}

// decodeData turns raw input bytes into the in-memory value for the
// requested data kind.
func decodeData(kind string, raw []byte) (any, error) {
	switch kind {
	case artifact.KindBlob:
		return raw, nil
	case artifact.KindDict:
		var dict map[string]any
		if err := json.Unmarshal(raw, &dict); err != nil {
			return nil, fmt.Errorf("parsing dict input as JSON: %w", err)
		}
		return dict, nil
	case artifact.KindTable:
		rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parsing table input as CSV: %w", err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported data kind %q (supported: blob, dict, table)", kind)
	}
}

// renderData turns a read-back data value into output bytes.
func renderData(data any) ([]byte, error) {
	switch value := data.(type) {
	case []byte:
		return value, nil
	case map[string]any:
		return json.MarshalIndent(value, "", "  ")
	case [][]string:
		var out bytes.Buffer
		writer := csv.NewWriter(&out)
		if err := writer.WriteAll(value); err != nil {
			return nil, err
		}
		return out.Bytes(), nil
	default:
		return nil, fmt.Errorf("cannot render data of type %T", data)
	}
}

// parseMetaFlags parses repeated key=value flags into a user metadata
// section.
func parseMetaFlags(entries []string) (metadata.Section, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	section := metadata.Section{}
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --meta entry %q, want key=value", entry)
		}
		section[key] = value
	}
	return section, nil
}
