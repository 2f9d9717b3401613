package bore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTree writes a small solution with one project to dir and
// returns the solution path.
func writeTree(t *testing.T, dir string) string {
	t.Helper()

	mustWrite := func(rel, content string) {
		t.Helper()
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	mustWrite("Engine/main.cpp", "int main() {}\n")
	mustWrite("Engine/widget.cpp", "widget\n")
	mustWrite("Engine/widget.h", "widget\n")
	mustWrite("Engine/helper.dll", "binary\n")
	mustWrite("notes.txt", "solution notes\n")

	mustWrite("Engine/Engine.vcxproj", `<Project>
  <ItemGroup>
    <ClCompile Include="main.cpp" />
    <ClCompile Include="widget.cpp" />
    <ClCompile Include="widget.cpp" />
    <ClInclude Include="widget.h" />
    <None Include="helper.dll" />
    <None Include="missing.c" />
  </ItemGroup>
</Project>`)

	sln := `Project("{8BC9CEB8-8B4A-11D0-8D11-00A0C91BC942}") = "Engine", "Engine/Engine.vcxproj", "{11111111-2222-3333-4444-555555555555}"
	ProjectSection(SolutionItems) = preProject
		notes.txt = notes.txt
	EndProjectSection
EndProject
Project("{2150E333-8FDC-42A3-9474-1A3956D46DE8}") = "Folder", "Folder", "{F0F0F0F0-0000-0000-0000-000000000000}"
EndProject
`
	mustWrite("app.sln", sln)
	return filepath.Join(dir, "app.sln")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	sln := writeTree(t, dir)

	idx, err := Load(sln, DefaultExcludePolicy())
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	var paths []string
	for i := range idx.Files {
		paths = append(paths, idx.Path(uint32(i)))
	}

	wantAbsent := []string{"helper.dll", "missing.c", "Engine.vcxproj"}
	for _, p := range paths {
		for _, bad := range wantAbsent {
			if strings.HasSuffix(p, bad) {
				t.Errorf("file list contains excluded entry %q", p)
			}
		}
	}

	wantPresent := []string{"main.cpp", "widget.cpp", "widget.h", "notes.txt"}
	for _, want := range wantPresent {
		found := false
		for _, p := range paths {
			if strings.HasSuffix(p, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("file list misses %q; have %v", want, paths)
		}
	}

	// widget.cpp is referenced twice; dedup keeps one record.
	n := 0
	for _, p := range paths {
		if strings.HasSuffix(p, "widget.cpp") {
			n++
		}
	}
	if n != 1 {
		t.Errorf("widget.cpp indexed %d times, want 1", n)
	}

	// Engine plus the solution-items folder plus the filter folder.
	if len(idx.Projects) != 3 {
		t.Fatalf("got %d projects, want 3", len(idx.Projects))
	}
	engine := idx.Projects[idx.ProjectByName("Engine")]
	if engine.FilePath == 0 {
		t.Errorf("Engine has no project file recorded")
	}
	folder := idx.Projects[idx.ProjectByName("Folder")]
	if folder.FilePath != 0 {
		t.Errorf("solution folder got a project file: %q", idx.Strings.Str(folder.FilePath))
	}
}

func TestLoadMissingSolution(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "gone.sln"), DefaultExcludePolicy())
	if err == nil {
		t.Fatal("Load of a missing solution succeeded")
	}
}

func TestExcludePolicy(t *testing.T) {
	p := DefaultExcludePolicy()
	cases := []struct {
		raw  string
		want bool
	}{
		{`X:\p\a.dll`, true},
		{`X:\p\a.DLL`, true},
		{`X:\p\Engine.vcxproj`, true},
		{`X:\p\tool.exe`, true},
		{`X:\p\a.c`, false},
		{`X:\p\dll`, false}, // no extension
	}
	for _, c := range cases {
		if got := p.Excluded(c.raw); got != c.want {
			t.Errorf("Excluded(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestExcludePolicyGlobs(t *testing.T) {
	p := ExcludePolicy{Patterns: []string{"**/generated/**"}}
	if !p.Excluded("src/generated/code.c") {
		t.Errorf("glob did not exclude generated file")
	}
	if p.Excluded("src/handwritten/code.c") {
		t.Errorf("glob excluded a regular file")
	}
}

func TestLoaderDropsDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "somedir"), 0o755); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(filepath.Join(dir, "app.sln"), DefaultExcludePolicy())
	proj := l.BeginProject("p", "{G}", filepath.Join(dir, "p.vcxproj"))
	l.AddFile(filepath.Join(dir, "somedir"), proj)
	idx := l.EndLoad()
	if len(idx.Files) != 0 {
		t.Fatalf("directory was indexed: %v", idx.Files)
	}
}

func TestWorkspaceReplaceOnLoad(t *testing.T) {
	dir := t.TempDir()
	sln := writeTree(t, dir)

	ws := NewWorkspace()
	defer ws.Close()

	if _, err := ws.Toggle("x.cpp"); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("Toggle before load err = %v, want ErrNotLoaded", err)
	}

	if err := ws.Load(sln, DefaultExcludePolicy()); err != nil {
		t.Fatal(err)
	}
	before := ws.Index()
	if before == nil || before.FileCount() == 0 {
		t.Fatal("load produced an empty index")
	}

	// A failed reload keeps the previous index.
	if err := ws.Load(filepath.Join(dir, "gone.sln"), DefaultExcludePolicy()); err == nil {
		t.Fatal("load of a missing solution succeeded")
	}
	if ws.Index() != before {
		t.Error("failed load replaced the index")
	}

	// A successful reload swaps it.
	if err := ws.Load(sln, DefaultExcludePolicy()); err != nil {
		t.Fatal(err)
	}
	if ws.Index() == before {
		t.Error("successful load kept the stale index")
	}
	if !strings.Contains(ws.Status(), "3 projects") {
		t.Errorf("Status() = %q", ws.Status())
	}
}
