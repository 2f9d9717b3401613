package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleSln = `Microsoft Visual Studio Solution File, Format Version 12.00
# Visual Studio Version 17
Project("{8BC9CEB8-8B4A-11D0-8D11-00A0C91BC942}") = "Engine", "Engine\Engine.vcxproj", "{11111111-2222-3333-4444-555555555555}"
EndProject
Project("{2150E333-8FDC-42A3-9474-1A3956D46DE8}") = "Docs", "Docs", "{AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE}"
	ProjectSection(SolutionItems) = preProject
		notes.txt = notes.txt
		tools\build.cmd = tools\build.cmd
	EndProjectSection
EndProject
Global
	GlobalSection(NestedProjects) = preSolution
		{11111111-2222-3333-4444-555555555555} = {AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE}
	EndGlobalSection
EndGlobal
`

func TestParseSolution(t *testing.T) {
	sln, err := ParseSolution(strings.NewReader(sampleSln))
	require.NoError(t, err)

	require.Len(t, sln.Projects, 2)
	require.Equal(t, Project{
		Name: "Engine",
		Path: `Engine\Engine.vcxproj`,
		GUID: "11111111-2222-3333-4444-555555555555",
	}, sln.Projects[0])
	require.Equal(t, "Docs", sln.Projects[1].Name)

	require.Equal(t, []string{"notes.txt", `tools\build.cmd`}, sln.Items)

	require.Len(t, sln.Nestings, 1)
	require.Equal(t, Nesting{
		Child:  "11111111-2222-3333-4444-555555555555",
		Parent: "AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE",
	}, sln.Nestings[0])

	require.Equal(t, 15, sln.LineCount)
}

func TestParseSolutionSkipsMangledLines(t *testing.T) {
	text := `garbage line
Project("{X}") = missing quotes
Project("{8BC9CEB8}") = "Good", "Good\Good.vcxproj", "{G1}"
	GlobalSection(NestedProjects) = preSolution
		not a nesting record
		{C} = {P}
	EndGlobalSection
`
	sln, err := ParseSolution(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, sln.Projects, 1)
	require.Equal(t, "Good", sln.Projects[0].Name)
	require.Equal(t, []Nesting{{Child: "C", Parent: "P"}}, sln.Nestings)
}

func TestParseSolutionEmpty(t *testing.T) {
	sln, err := ParseSolution(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, sln.Projects)
	require.Empty(t, sln.Items)
	require.Zero(t, sln.LineCount)
}
