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
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring"
	"golang.org/x/sync/errgroup"

	"github.com/pjkack/bore/query"
)

// Engine answers substring queries over one Index. It owns a scratch
// arena per worker slot; the arenas grow to the largest file seen and
// are reused across queries until Close.
type Engine struct {
	idx *Index

	// mu serializes queries: the scratch arenas are bound to worker
	// slots, not to requests.
	mu      sync.Mutex
	scratch [maxThreads]*Arena
}

const initialScratchArena = 1 << 20

var ErrEmptyNeedle = errors.New("bore: empty search needle")

func NewEngine(idx *Index) *Engine {
	return &Engine{idx: idx}
}

// Index returns the engine's index.
func (e *Engine) Index() *Index { return e.idx }

// Close frees the per-worker scratch buffers.
func (e *Engine) Close() {
	for i, a := range e.scratch {
		if a != nil {
			a.Free()
			e.scratch[i] = nil
		}
	}
}

func (e *Engine) scratchArena(worker int) *Arena {
	if e.scratch[worker] == nil {
		e.scratch[worker] = NewArena(initialScratchArena)
	}
	return e.scratch[worker]
}

// newExtFilter hashes the query's extension names into the filter set.
// At most query.MaxSearchExtensions entries are used; the rest are dropped.
func newExtFilter(exts []string) *roaring.Bitmap {
	if len(exts) == 0 {
		return nil
	}
	if len(exts) > query.MaxSearchExtensions {
		exts = exts[:query.MaxSearchExtensions]
	}
	bm := roaring.New()
	for _, e := range exts {
		bm.Add(foldHashString(strings.TrimPrefix(e, ".")))
	}
	return bm
}

// raiseTruncation bumps the flag to t if t is higher. Transitions are
// monotonic: 0 -> 1 -> 2.
func raiseTruncation(flag *uint32, t Truncation) {
	for {
		cur := atomic.LoadUint32(flag)
		if cur >= uint32(t) {
			return
		}
		if atomic.CompareAndSwapUint32(flag, cur, uint32(t)) {
			return
		}
	}
}

// Find runs the query. Workers claim file indexes from an atomic
// dispenser, read each file into their scratch arena, scan it with
// Quick-Search and write resolved matches into a shared bounded buffer
// reserved by fetch-and-add. File order in the result reflects worker
// interleaving; matches within one file are ascending by offset.
func (e *Engine) Find(ctx context.Context, q *query.Q, opts *SearchOptions) (*FindResult, error) {
	var o SearchOptions
	if opts != nil {
		o = *opts
	}
	o.SetDefaults()

	needle := []byte(q.Needle)
	if len(needle) == 0 {
		return nil, ErrEmptyNeedle
	}
	extFilter := newExtFilter(q.Exts)
	shift := makeShiftTable(needle)

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	metricSearchRunning.Inc()
	defer metricSearchRunning.Dec()

	results := make([]Match, o.MaxMatches)
	var (
		nextFile   int64
		matchCount int64
		truncated  uint32
	)
	workerStats := make([]Stats, o.Threads)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < o.Threads; w++ {
		w := w
		scratch := e.scratchArena(w)
		g.Go(func() error {
			st := &workerStats[w]
			offsets := make([]int, 0, o.MaxMatchesPerFile)
			local := make([]Match, 0, o.MaxMatchesPerFile)
			for {
				if atomic.LoadUint32(&truncated) == uint32(TruncationHard) {
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				n := atomic.AddInt64(&nextFile, 1) - 1
				if n >= int64(len(e.idx.Files)) {
					return nil
				}
				st.FilesConsidered++

				if extFilter != nil && !extFilter.Contains(e.idx.ExtHashes[n]) {
					st.FilesSkipped++
					continue
				}

				data, ok := readFileInto(scratch, e.idx.Strings.Str(e.idx.Files[n].Path))
				if !ok {
					st.FilesFailed++
					continue
				}
				st.FilesLoaded++
				st.ContentBytesLoaded += int64(len(data))

				offsets = findAll(data, needle, shift, offsets[:0])
				if len(offsets) == 0 {
					continue
				}
				if len(offsets) == o.MaxMatchesPerFile {
					raiseTruncation(&truncated, TruncationSoft)
				}
				local = resolveMatches(uint32(n), data, offsets, o.MaxLineBytes, local[:0])

				// Reserve a range of the shared buffer. Ranges never
				// overlap, so the copy below needs no lock.
				reserved := atomic.AddInt64(&matchCount, int64(len(local))) - int64(len(local))
				if reserved >= int64(o.MaxMatches) {
					raiseTruncation(&truncated, TruncationHard)
					continue
				}
				wrote := len(local)
				if room := int(int64(o.MaxMatches) - reserved); wrote > room {
					wrote = room
					raiseTruncation(&truncated, TruncationSoft)
				}
				copy(results[reserved:int(reserved)+wrote], local[:wrote])
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := atomic.LoadInt64(&matchCount)
	if total > int64(o.MaxMatches) {
		total = int64(o.MaxMatches)
	}

	res := &FindResult{
		Matches:    results[:total],
		Truncation: Truncation(atomic.LoadUint32(&truncated)),
	}
	for _, st := range workerStats {
		res.Stats.Add(st)
	}
	res.Stats.MatchCount = int(total)
	res.Stats.Duration = time.Since(start)

	metricSearchDuration.Observe(res.Stats.Duration.Seconds())
	metricSearchFilesConsideredTotal.Add(float64(res.Stats.FilesConsidered))
	metricSearchFilesLoadedTotal.Add(float64(res.Stats.FilesLoaded))
	metricSearchContentBytesLoadedTotal.Add(float64(res.Stats.ContentBytesLoaded))
	metricSearchMatchCountTotal.Add(float64(res.Stats.MatchCount))
	return res, nil
}

// readFileInto reads the whole file at path into the scratch arena.
// Open, size and read failures all report !ok; the caller skips the
// file silently.
func readFileInto(scratch *Arena, path string) ([]byte, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, false
	}
	size := int(fi.Size())

	scratch.Reset()
	off := scratch.Alloc(size)
	buf := scratch.Bytes(off, size)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, false
	}
	return buf, true
}

// resolveMatches turns ascending byte offsets into (row, column, line)
// records in a single pass over the file.
func resolveMatches(fileIndex uint32, data []byte, offsets []int, maxLine int, out []Match) []Match {
	row := 1
	lineStart := 0
	pos := 0
	for _, off := range offsets {
		for pos < off {
			if data[pos] == '\n' {
				row++
				lineStart = pos + 1
			}
			pos++
		}
		lineEnd := off
		for lineEnd < len(data) && data[lineEnd] != '\r' && data[lineEnd] != '\n' {
			lineEnd++
		}
		line := data[lineStart:lineEnd]
		if len(line) > maxLine {
			line = line[:maxLine]
		}
		out = append(out, Match{
			FileIndex: fileIndex,
			Row:       uint32(row),
			Column:    uint32(off - lineStart + 1),
			Line:      string(line),
		})
	}
	return out
}
