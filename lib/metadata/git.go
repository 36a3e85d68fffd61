// Copyright 2026 The Pond Authors
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// gitTimeout bounds each git invocation. Metadata collection runs in
// the synchronous write path; a hung git must not hang the write.
const gitTimeout = 5 * time.Second

// GitSource contributes a "git" manifest section describing the state
// of a repository at write time: current commit SHA, repository name,
// and active branch. All commands target the repository directory via
// "git -C <dir>"; there is no default directory.
type GitSource struct {
	dir string
}

// NewGitSource returns a source describing the git repository at dir.
// dir may be any directory inside the working tree.
func NewGitSource(dir string) *GitSource {
	return &GitSource{dir: dir}
}

// SectionName returns "git".
func (s *GitSource) SectionName() string { return "git" }

// Collect gathers the SHA, repository name, and branch. It fails if
// dir is not inside a git repository.
func (s *GitSource) Collect() (Section, error) {
	sha, err := s.run("rev-parse", "HEAD")
	if err != nil {
		return nil, err
	}
	branch, err := s.run("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, err
	}
	name, err := s.repoName()
	if err != nil {
		return nil, err
	}
	return Section{
		"sha":    sha,
		"name":   name,
		"branch": branch,
	}, nil
}

// repoName infers the repository name from the "origin" remote URL,
// falling back to the top-level working directory basename when no
// origin remote is configured.
func (s *GitSource) repoName() (string, error) {
	if url, err := s.run("remote", "get-url", "origin"); err == nil && url != "" {
		base := filepath.Base(url)
		return strings.TrimSuffix(base, ".git"), nil
	}
	topLevel, err := s.run("rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return filepath.Base(topLevel), nil
}

// run executes a git command targeting the source's directory and
// returns trimmed stdout. Stderr is captured separately and included
// in error messages on failure.
func (s *GitSource) run(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	fullArgs := append([]string{"-C", s.dir}, args...)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), s.dir, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
