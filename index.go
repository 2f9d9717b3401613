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
	"bufio"
	"io"
	"os"
	"sort"
	"strings"
)

// FileRecord names one indexed file. It is pointer free: the path lives
// in the index's string table and the record refers to it by offset.
type FileRecord struct {
	// Path is the offset of the canonical absolute path in the string
	// table.
	Path uint32

	// Project is the index of the owning project in Index.Projects.
	Project uint32
}

// ProjectRecord is one project of the loaded solution, in solution
// order.
type ProjectRecord struct {
	Name uint32

	// FilePath is the canonical path of the project file, or 0 when
	// the entry is a solution-filter folder rather than a buildable
	// project.
	FilePath uint32

	// GUID identifies the project within the solution file.
	GUID uint32
}

// NestedProject records one child/parent pair from the solution's
// NestedProjects section. Both fields are GUID string offsets.
type NestedProject struct {
	Child  uint32
	Parent uint32
}

// Index is the in-memory view of one loaded solution. It is immutable
// once built; a reload replaces the whole index.
type Index struct {
	Strings *StringTable

	// SlnPath and SlnDir are the canonical solution file path and its
	// directory (with trailing separator).
	SlnPath uint32
	SlnDir  uint32

	Projects []ProjectRecord
	Nested   []NestedProject

	// Files is sorted case-insensitively by path and deduplicated.
	Files []FileRecord

	// FilesByProject holds the same records re-sorted by project
	// index. The sort is stable: within one project the files keep
	// their by-path order.
	FilesByProject []FileRecord

	// ExtHashes[i] is the case-folded hash of Files[i]'s extension.
	ExtHashes []uint32

	toggle []toggleEntry
}

// IndexBuilder accumulates projects and files during a load and derives
// the auxiliary tables on Build.
type IndexBuilder struct {
	strs     *StringTable
	slnPath  uint32
	slnDir   uint32
	projects []ProjectRecord
	nested   []NestedProject
	files    []FileRecord
}

const initialStringArena = 8 * 1024 * 1024

func NewIndexBuilder(slnPath string) *IndexBuilder {
	b := &IndexBuilder{strs: NewStringTable(initialStringArena)}
	b.slnPath = b.strs.Intern(slnPath)
	dir := slnPath
	if i := strings.LastIndexByte(dir, os.PathSeparator); i >= 0 {
		dir = dir[:i+1]
	}
	b.slnDir = b.strs.Intern(dir)
	return b
}

// Intern copies s into the builder's string table.
func (b *IndexBuilder) Intern(s string) uint32 {
	return b.strs.Intern(s)
}

// AddProject appends a project record and returns its index. filePath
// is 0 for solution-filter folders.
func (b *IndexBuilder) AddProject(name, guid string, filePath uint32) uint32 {
	b.projects = append(b.projects, ProjectRecord{
		Name:     b.strs.Intern(name),
		FilePath: filePath,
		GUID:     b.strs.Intern(guid),
	})
	return uint32(len(b.projects) - 1)
}

// AddNested records a child/parent project nesting pair.
func (b *IndexBuilder) AddNested(childGUID, parentGUID string) {
	b.nested = append(b.nested, NestedProject{
		Child:  b.strs.Intern(childGUID),
		Parent: b.strs.Intern(parentGUID),
	})
}

// AddFile appends a file with an already canonical path.
func (b *IndexBuilder) AddFile(path string, project uint32) {
	b.files = append(b.files, FileRecord{
		Path:    b.strs.Intern(path),
		Project: project,
	})
}

// Build sorts, deduplicates and derives the project view, the extension
// hash vector and the toggle index. The builder must not be used
// afterwards.
func (b *IndexBuilder) Build() *Index {
	idx := &Index{
		Strings:  b.strs,
		SlnPath:  b.slnPath,
		SlnDir:   b.slnDir,
		Projects: b.projects,
		Nested:   b.nested,
		Files:    b.files,
	}

	sort.Slice(idx.Files, func(i, j int) bool {
		return foldCompare(
			idx.Strings.StrBytes(idx.Files[i].Path),
			idx.Strings.StrBytes(idx.Files[j].Path)) < 0
	})

	// uniq. Equal keys have no meaningful tie-break; the first one wins.
	w := 0
	for r := 0; r < len(idx.Files); r++ {
		if r > 0 && foldEqual(
			idx.Strings.StrBytes(idx.Files[r].Path),
			idx.Strings.StrBytes(idx.Files[w-1].Path)) {
			continue
		}
		idx.Files[w] = idx.Files[r]
		w++
	}
	idx.Files = idx.Files[:w]

	idx.FilesByProject = make([]FileRecord, len(idx.Files))
	copy(idx.FilesByProject, idx.Files)
	sort.SliceStable(idx.FilesByProject, func(i, j int) bool {
		return idx.FilesByProject[i].Project < idx.FilesByProject[j].Project
	})

	idx.ExtHashes = make([]uint32, len(idx.Files))
	for i, f := range idx.Files {
		idx.ExtHashes[i] = foldHash(extOf(idx.Strings.StrBytes(f.Path)))
	}

	idx.buildToggle()
	return idx
}

// extOf returns the extension of path: the bytes after the last '.' of
// the base name, or nil if the base name has none.
func extOf(path []byte) []byte {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case '.':
			return path[i+1:]
		case '/', '\\':
			return nil
		}
	}
	return nil
}

// baseNameOf returns the base name of path without its extension, and
// whether an extension was present.
func baseNameOf(path []byte) ([]byte, bool) {
	start := 0
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			start = i + 1
			break
		}
	}
	base := path[start:]
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i], true
		}
	}
	return base, false
}

// FileCount returns the number of indexed files.
func (idx *Index) FileCount() int { return len(idx.Files) }

// Path returns the canonical path of file i.
func (idx *Index) Path(i uint32) string {
	return idx.Strings.Str(idx.Files[i].Path)
}

// RelPath returns path relative to the solution directory when it lies
// within it, otherwise path unchanged.
func (idx *Index) RelPath(path string) string {
	dir := idx.Strings.Str(idx.SlnDir)
	if len(path) > len(dir) && foldEqualString([]byte(path[:len(dir)]), dir) {
		return path[len(dir):]
	}
	return path
}

// ProjectFiles returns the records of one project, in by-path order.
func (idx *Index) ProjectFiles(project uint32) []FileRecord {
	lo := sort.Search(len(idx.FilesByProject), func(i int) bool {
		return idx.FilesByProject[i].Project >= project
	})
	hi := sort.Search(len(idx.FilesByProject), func(i int) bool {
		return idx.FilesByProject[i].Project > project
	})
	return idx.FilesByProject[lo:hi]
}

// ProjectByName returns the index of the first project with the given
// name, or -1.
func (idx *Index) ProjectByName(name string) int {
	for i, p := range idx.Projects {
		if foldEqualString(idx.Strings.StrBytes(p.Name), name) {
			return i
		}
	}
	return -1
}

// WriteFileList writes the sorted file list, one path per line. The
// original engine handed this list to the editor through a temp file.
func (idx *Index) WriteFileList(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, f := range idx.Files {
		bw.Write(idx.Strings.StrBytes(f.Path))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Close releases the index's string storage.
func (idx *Index) Close() {
	idx.Strings.Free()
	idx.Files = nil
	idx.FilesByProject = nil
	idx.ExtHashes = nil
	idx.toggle = nil
	idx.Projects = nil
	idx.Nested = nil
}
