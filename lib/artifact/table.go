// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pond-foundation/pond/lib/metadata"
)

// TableCodec stores row-oriented tables ([][]string, first row being
// the header) as CSV. User metadata is embedded as "# key value"
// comment lines before the header, so the stored file carries its own
// metadata; list-valued entries are joined with commas.
//
// Writer and reader options:
//
//	"comma": single-character field delimiter; default ",".
type TableCodec struct{}

// Name returns "table-csv".
func (TableCodec) Name() string { return "table-csv" }

// Kind returns [KindTable].
func (TableCodec) Kind() string { return KindTable }

// Filename appends the ".csv" extension.
func (TableCodec) Filename(basename string) string { return basename + ".csv" }

// New wraps a [][]string table. The content hash covers the
// comma-separated rows without the metadata header.
func (c TableCodec) New(data any, meta metadata.Section) (Artifact, error) {
	rows, ok := data.([][]string)
	if !ok {
		return nil, fmt.Errorf("table codec: data is %T, want [][]string", data)
	}

	var canonical bytes.Buffer
	if err := writeRows(&canonical, rows, ','); err != nil {
		return nil, fmt.Errorf("table codec: %w", err)
	}
	return &tableArtifact{
		rows:        rows,
		meta:        meta,
		contentHash: ContentHash(canonical.Bytes()),
	}, nil
}

// ReadBytes parses leading "# key value" metadata lines, then the CSV
// rows. Manifest metadata, when present, wins over the embedded copy.
func (c TableCodec) ReadBytes(r io.Reader, meta metadata.Section, opts Options) (Artifact, error) {
	if err := opts.validate("comma"); err != nil {
		return nil, fmt.Errorf("table codec: %w", err)
	}
	comma, err := commaOption(opts)
	if err != nil {
		return nil, fmt.Errorf("table codec: %w", err)
	}

	buffered := bufio.NewReader(r)
	embedded := metadata.Section{}
	for {
		peeked, err := buffered.Peek(1)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("table codec: reading header: %w", err)
		}
		if peeked[0] != '#' {
			break
		}
		line, err := buffered.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("table codec: reading header: %w", err)
		}
		key, value, found := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "#")), " ")
		if found {
			embedded[key] = value
		} else if key != "" {
			embedded[key] = ""
		}
	}

	reader := csv.NewReader(buffered)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("table codec: parsing CSV: %w", err)
	}

	if meta == nil && len(embedded) > 0 {
		meta = embedded
	}
	return &tableArtifact{rows: rows, meta: meta}, nil
}

type tableArtifact struct {
	rows        [][]string
	meta        metadata.Section
	contentHash string
}

func (a *tableArtifact) Data() any { return a.rows }

func (a *tableArtifact) Metadata() metadata.Section { return a.meta }

func (a *tableArtifact) WriteBytes(w io.Writer, opts Options) error {
	if err := opts.validate("comma"); err != nil {
		return fmt.Errorf("table codec: %w", err)
	}
	comma, err := commaOption(opts)
	if err != nil {
		return fmt.Errorf("table codec: %w", err)
	}

	// Metadata header lines, sorted for stable output.
	coerced, err := metadata.CoerceSection(a.meta)
	if err != nil {
		return fmt.Errorf("table codec: embedding metadata: %w", err)
	}
	keys := make([]string, 0, len(coerced))
	for key := range coerced {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := coerced[key]
		var rendered string
		switch v := value.(type) {
		case string:
			rendered = v
		case []string:
			rendered = strings.Join(v, ",")
		}
		if _, err := fmt.Fprintf(w, "# %s %s\n", key, rendered); err != nil {
			return fmt.Errorf("table codec: writing header: %w", err)
		}
	}

	if err := writeRows(w, a.rows, comma); err != nil {
		return fmt.Errorf("table codec: %w", err)
	}
	return nil
}

func (a *tableArtifact) ArtifactMetadata() metadata.Section {
	if a.contentHash == "" {
		return nil
	}
	return metadata.Section{
		"content_hash": a.contentHash,
		"rows":         len(a.rows),
	}
}

// writeRows encodes rows as CSV with the given delimiter.
func writeRows(w io.Writer, rows [][]string, comma rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = comma
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("encoding CSV: %w", err)
	}
	return nil
}

// commaOption reads the "comma" option as a single rune.
func commaOption(opts Options) (rune, error) {
	value, err := opts.stringOption("comma", ",")
	if err != nil {
		return 0, err
	}
	runes := []rune(value)
	if len(runes) != 1 {
		return 0, fmt.Errorf(`option "comma" must be a single character, got %q`, value)
	}
	return runes[0], nil
}

func init() {
	DefaultRegistry.Register(TableCodec{}, KindTable, "csv")
}
