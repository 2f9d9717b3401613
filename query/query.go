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

// Package query parses the find command's argument text.
package query

import "strings"

// MaxSearchExtensions caps the extension filter. Entries beyond the cap
// are dropped without complaint.
const MaxSearchExtensions = 12

// Q is a parsed find query: a literal needle and an optional set of
// extension names to restrict the search to.
type Q struct {
	Needle string
	Exts   []string
}

func (q *Q) String() string {
	if len(q.Exts) == 0 {
		return q.Needle
	}
	return "-e " + strings.Join(q.Exts, ",") + " " + q.Needle
}

// Parse interprets arg as `[-e ext1,ext2,...] needle`. The needle is
// taken verbatim, spaces included. An unknown or empty flag makes the
// whole remainder the literal needle, so searching for text that starts
// with a dash still works.
func Parse(arg string) *Q {
	q := &Q{Needle: arg}
	if !strings.HasPrefix(arg, "-") {
		return q
	}
	flag, rest, ok := strings.Cut(arg, " ")
	if flag != "-e" || !ok {
		return q
	}
	exts, needle, ok := strings.Cut(rest, " ")
	if !ok || exts == "" || needle == "" {
		return q
	}
	q.Needle = needle
	for _, e := range strings.Split(exts, ",") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if len(q.Exts) == MaxSearchExtensions {
			break
		}
		q.Exts = append(q.Exts, e)
	}
	return q
}
