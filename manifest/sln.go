// Package manifest holds the external-format scanners: the solution
// line scanner and the project XML attribute scanner. Both emit raw
// path strings; canonicalization and filtering happen in the loader.
package manifest

import (
	"bufio"
	"io"
	"strings"

	"github.com/grafana/regexp"
)

// Project is one Project(...) line of a solution file. Path is raw and
// usually relative to the solution directory.
type Project struct {
	Name string
	Path string
	GUID string
}

// Nesting is one child = parent record of the NestedProjects section.
// Both fields are GUIDs without braces.
type Nesting struct {
	Child  string
	Parent string
}

// Solution is the scanned content of one solution file.
type Solution struct {
	Projects []Project

	// Items are the raw paths of the SolutionItems sections.
	Items []string

	Nestings []Nesting

	LineCount int
}

var (
	projectLineRe = regexp.MustCompile(`^Project\("\{[^}]*\}"\)\s*=\s*"([^"]*)",\s*"([^"]*)",\s*"\{([^}]*)\}"`)
	nestingLineRe = regexp.MustCompile(`^\{([^}]*)\}\s*=\s*\{([^}]*)\}`)
)

type slnSection int

const (
	sectionNone slnSection = iota
	sectionSolutionItems
	sectionNestedProjects
)

// ParseSolution scans the line-oriented solution text. A line that
// matches no known shape is skipped and the section state resets at
// the section end markers, so a mangled region costs only its own
// lines.
func ParseSolution(r io.Reader) (*Solution, error) {
	sln := &Solution{}
	section := sectionNone

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		sln.LineCount++
		line := strings.TrimSpace(scanner.Text())

		switch section {
		case sectionSolutionItems:
			if strings.HasPrefix(line, "EndProjectSection") {
				section = sectionNone
				continue
			}
			// Solution items are written as "X = X".
			if lhs, _, ok := strings.Cut(line, "="); ok {
				if item := strings.TrimSpace(lhs); item != "" {
					sln.Items = append(sln.Items, item)
				}
			}
			continue

		case sectionNestedProjects:
			if strings.HasPrefix(line, "EndGlobalSection") {
				section = sectionNone
				continue
			}
			if m := nestingLineRe.FindStringSubmatch(line); m != nil {
				sln.Nestings = append(sln.Nestings, Nesting{Child: m[1], Parent: m[2]})
			}
			continue
		}

		if m := projectLineRe.FindStringSubmatch(line); m != nil {
			sln.Projects = append(sln.Projects, Project{Name: m[1], Path: m[2], GUID: m[3]})
			continue
		}
		if strings.HasPrefix(line, "ProjectSection(SolutionItems)") {
			section = sectionSolutionItems
			continue
		}
		if strings.HasPrefix(line, "GlobalSection(NestedProjects)") {
			section = sectionNestedProjects
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sln, nil
}
