// Copyright 2016 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"

	"github.com/pjkack/bore/manifest"
	"github.com/pjkack/bore/paths"
)

// ExcludePolicy decides which manifest entries never reach the index.
// The extension check runs on the raw name, before the entry is
// canonicalized, so excluded files cost no path resolution.
type ExcludePolicy struct {
	// Exts are extension names, without the dot, compared case
	// insensitively.
	Exts []string

	// Patterns are doublestar globs matched against the raw path.
	Patterns []string
}

// DefaultExcludePolicy matches the build artifacts and project files
// the original tooling hard-coded.
func DefaultExcludePolicy() ExcludePolicy {
	return ExcludePolicy{Exts: []string{"dll", "vcxproj", "exe"}}
}

func (p *ExcludePolicy) Excluded(raw string) bool {
	ext := extOf([]byte(raw))
	for _, e := range p.Exts {
		if foldEqualString(ext, strings.TrimPrefix(e, ".")) {
			return true
		}
	}
	for _, pattern := range p.Patterns {
		pattern = strings.TrimSpace(pattern)
		if m, _ := doublestar.PathMatch(pattern, raw); m {
			return true
		}
	}
	return false
}

// Loader feeds parser output into an IndexBuilder: it canonicalizes
// paths, applies the exclusion policy and records project membership.
type Loader struct {
	b      *IndexBuilder
	policy ExcludePolicy
}

func NewLoader(slnCanonicalPath string, policy ExcludePolicy) *Loader {
	return &Loader{b: NewIndexBuilder(slnCanonicalPath), policy: policy}
}

// BeginProject records a project and returns its index. When the
// project file path does not resolve to an existing file the record is
// kept with a zero file path: the entry is a solution-filter folder.
func (l *Loader) BeginProject(name, guid, rawProjectPath string) uint32 {
	var fileOff uint32
	if cp, isDir, err := paths.CanonicalizeStat(rawProjectPath); err == nil && !isDir {
		fileOff = l.b.Intern(cp)
	}
	return l.b.AddProject(name, guid, fileOff)
}

// AddFile records one file of a project. Excluded extensions are
// dropped before canonicalization; entries that cannot be resolved, or
// that name directories, are dropped silently.
func (l *Loader) AddFile(raw string, project uint32) {
	if l.policy.Excluded(raw) {
		return
	}
	cp, isDir, err := paths.CanonicalizeStat(raw)
	if err != nil || isDir {
		return
	}
	l.b.AddFile(cp, project)
}

// AddNested records a NestedProjects pair.
func (l *Loader) AddNested(childGUID, parentGUID string) {
	l.b.AddNested(childGUID, parentGUID)
}

// EndLoad finalizes the index.
func (l *Loader) EndLoad() *Index {
	return l.b.Build()
}

// Load reads the solution at slnPath and builds a fresh index over
// every file its projects reference. Only an unreadable solution file
// is fatal; broken projects and files degrade to smaller indexes.
func Load(slnPath string, policy ExcludePolicy) (*Index, error) {
	sp, err := paths.Canonicalize(slnPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", slnPath, err)
	}
	f, err := os.Open(sp)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", slnPath, err)
	}
	sln, err := manifest.ParseSolution(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", slnPath, err)
	}

	l := NewLoader(sp, policy)
	slnDir := filepath.Dir(sp)

	if len(sln.Items) > 0 {
		// Solution-level files hang off a synthetic folder project
		// named after the solution itself.
		base := filepath.Base(sp)
		folder := l.b.AddProject(strings.TrimSuffix(base, filepath.Ext(base)), "", 0)
		for _, item := range sln.Items {
			if !filepath.IsAbs(item) {
				item = filepath.Join(slnDir, filepath.FromSlash(item))
			}
			l.AddFile(item, folder)
		}
	}

	for _, p := range sln.Projects {
		raw := p.Path
		if !filepath.IsAbs(raw) {
			raw = filepath.Join(slnDir, filepath.FromSlash(raw))
		}
		proj := l.BeginProject(p.Name, p.GUID, raw)
		rec := l.b.projects[proj]
		if rec.FilePath == 0 {
			continue
		}
		for _, file := range manifest.ProjectFiles(l.b.strs.Str(rec.FilePath)) {
			l.AddFile(file, proj)
		}
	}
	for _, n := range sln.Nestings {
		l.AddNested(n.Child, n.Parent)
	}

	return l.EndLoad(), nil
}
