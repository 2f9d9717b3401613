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

package bore // import "github.com/pjkack/bore"

import (
	"fmt"
	"time"
)

// Match is a single occurrence of the needle within an indexed file.
type Match struct {
	// FileIndex is the position of the file in Index.Files.
	FileIndex uint32

	// Row is the 1-based line number of the match.
	Row uint32

	// Column is the 1-based byte column of the match start within its
	// line.
	Column uint32

	// Line is the text of the containing line, without the trailing
	// newline, clamped to SearchOptions.MaxLineBytes.
	Line string
}

// Truncation reports whether a search hit one of its caps.
type Truncation uint32

const (
	// TruncationNone means every occurrence was returned.
	TruncationNone Truncation = 0

	// TruncationSoft means a cap was reached: a file yielded
	// MaxMatchesPerFile matches, or the shared buffer could not take
	// all of a file's matches. More occurrences may have existed than
	// were emitted.
	TruncationSoft Truncation = 1

	// TruncationHard means the shared result buffer filled up and the
	// remaining workers exited early.
	TruncationHard Truncation = 2
)

func (t Truncation) String() string {
	switch t {
	case TruncationNone:
		return "none"
	case TruncationSoft:
		return "soft"
	case TruncationHard:
		return "hard"
	}
	return fmt.Sprintf("truncation(%d)", uint32(t))
}

// Stats aggregates per-query bookkeeping across all workers.
type Stats struct {
	// Duration is the wall clock time of the query.
	Duration time.Duration

	// FilesConsidered is the number of files claimed from the dispenser.
	FilesConsidered int

	// FilesSkipped counts files rejected by the extension filter.
	FilesSkipped int

	// FilesLoaded counts files whose contents were read and scanned.
	FilesLoaded int

	// FilesFailed counts files that could not be opened, sized or read.
	// They are skipped silently.
	FilesFailed int

	// ContentBytesLoaded is the total file content read.
	ContentBytesLoaded int64

	// MatchCount is the number of matches returned.
	MatchCount int
}

func (s *Stats) Add(o Stats) {
	s.FilesConsidered += o.FilesConsidered
	s.FilesSkipped += o.FilesSkipped
	s.FilesLoaded += o.FilesLoaded
	s.FilesFailed += o.FilesFailed
	s.ContentBytesLoaded += o.ContentBytesLoaded
	s.MatchCount += o.MatchCount
}

// FindResult is the outcome of Engine.Find.
type FindResult struct {
	Matches    []Match
	Truncation Truncation
	Stats      Stats
}

// SearchOptions bounds a single query.
type SearchOptions struct {
	// Threads is the number of parallel workers, clamped to [1, 32].
	Threads int

	// MaxMatches caps the total number of matches returned.
	MaxMatches int

	// MaxMatchesPerFile caps the number of matches emitted per file.
	MaxMatchesPerFile int

	// MaxLineBytes clamps the length of the Line text stored per match.
	// A longer line is cut, not split into further matches.
	MaxLineBytes int
}

const (
	defaultThreads           = 4
	defaultMaxMatches        = 1000
	defaultMaxMatchesPerFile = 100

	// The original engine stored lines in a 1024-byte record with a
	// 12-byte header.
	defaultMaxLineBytes = 1012

	minLineBytes = 256

	maxThreads = 32
)

func (o *SearchOptions) SetDefaults() {
	if o.Threads == 0 {
		o.Threads = defaultThreads
	}
	if o.Threads < 1 {
		o.Threads = 1
	}
	if o.Threads > maxThreads {
		o.Threads = maxThreads
	}
	if o.MaxMatches == 0 {
		o.MaxMatches = defaultMaxMatches
	}
	if o.MaxMatchesPerFile == 0 {
		o.MaxMatchesPerFile = defaultMaxMatchesPerFile
	}
	if o.MaxLineBytes == 0 {
		o.MaxLineBytes = defaultMaxLineBytes
	}
	if o.MaxLineBytes < minLineBytes {
		o.MaxLineBytes = minLineBytes
	}
}
