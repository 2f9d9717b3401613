package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sourcegraph/log/logtest"
	"github.com/stretchr/testify/require"

	"github.com/pjkack/bore"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("Engine/main.cpp", "int main() { return 0; }\n")
	write("Engine/main.h", "int main();\n")
	write("Engine/Engine.vcxproj", `<Project><ItemGroup>
  <ClCompile Include="main.cpp" />
  <ClInclude Include="main.h" />
</ItemGroup></Project>`)
	write("app.sln", `Project("{8BC9CEB8-8B4A-11D0-8D11-00A0C91BC942}") = "Engine", "Engine/Engine.vcxproj", "{11111111-2222-3333-4444-555555555555}"
EndProject
`)

	ws := bore.NewWorkspace()
	t.Cleanup(ws.Close)
	require.NoError(t, ws.Load(filepath.Join(dir, "app.sln"), bore.DefaultExcludePolicy()))

	return NewServer(ws, logtest.Scoped(t))
}

func TestServeSearch(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/search?q=main")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reply struct {
		Matches []struct {
			Path string `json:"path"`
			Row  uint32 `json:"row"`
		} `json:"matches"`
		Truncation uint32 `json:"truncation"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	require.Len(t, reply.Matches, 2)
	require.Equal(t, uint32(0), reply.Truncation)
	for _, m := range reply.Matches {
		require.NotContains(t, m.Path, "/tmp", "paths should be relative to the solution dir")
	}
}

func TestServeSearchMissingQuery(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/search")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeToggle(t *testing.T) {
	s := testServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	idx := s.Workspace.Index()
	var cppPath string
	for i := 0; i < idx.FileCount(); i++ {
		if filepath.Ext(idx.Path(uint32(i))) == ".cpp" {
			cppPath = idx.Path(uint32(i))
		}
	}
	require.NotEmpty(t, cppPath)

	resp, err := http.Get(srv.URL + "/api/toggle?path=" + cppPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reply map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	require.Equal(t, ".h", filepath.Ext(reply["path"]))

	resp, err = http.Get(srv.URL + "/api/toggle?path=/nope/missing.cpp")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeFilesAndProjects(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/files")
	require.NoError(t, err)
	defer resp.Body.Close()
	var files []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&files))
	require.Len(t, files, 2)

	resp, err = http.Get(srv.URL + "/api/projects")
	require.NoError(t, err)
	defer resp.Body.Close()
	var projects []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&projects))
	require.Len(t, projects, 1)
	require.Equal(t, "Engine", projects[0].Name)
}

func TestServeHealthz(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
