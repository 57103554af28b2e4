package paths_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/jsploader/pkg/errors"
	"github.com/arthur-debert/jsploader/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealm(t *testing.T) {
	assert.Equal(t, "online", paths.Online.String())
	assert.Equal(t, "offline", paths.Offline.String())
	assert.Equal(t, paths.Online, paths.RealmOf(true))
	assert.Equal(t, paths.Offline, paths.RealmOf(false))
}

func TestNewRepository(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name        string
		folder      string
		wantWebPath string
		wantRoot    string
	}{
		{
			name:        "default_folder",
			folder:      "",
			wantWebPath: "/WEB-INF/jsp/",
			wantRoot:    filepath.Join(base, "WEB-INF", "jsp") + string(filepath.Separator),
		},
		{
			name:        "trailing_slash_enforced",
			folder:      "/jsp",
			wantWebPath: "/jsp/",
			wantRoot:    filepath.Join(base, "jsp") + string(filepath.Separator),
		},
		{
			name:        "double_slashes_normalised",
			folder:      "//WEB-INF//jsp/",
			wantWebPath: "//WEB-INF//jsp/",
			wantRoot:    filepath.Join(base, "WEB-INF", "jsp") + string(filepath.Separator),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := paths.NewRepository(base, tt.folder)
			require.NoError(t, err)
			assert.Equal(t, tt.wantWebPath, repo.WebPath())
			assert.Equal(t, tt.wantRoot, repo.Root())
		})
	}
}

func TestNewRepository_EmptyRepository(t *testing.T) {
	_, err := paths.NewRepository("", "/jsp/")
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
}

func TestRepositoryMapping(t *testing.T) {
	base := t.TempDir()
	repo, err := paths.NewRepository(base, "/WEB-INF/jsp/")
	require.NoError(t, err)

	assert.Equal(t, "/a.jsp.jsp", paths.Name("/a.jsp"))

	assert.Equal(t,
		filepath.Join(base, "WEB-INF", "jsp", "online", "sites", "a.jsp.jsp"),
		repo.RfsPath("/sites/a.jsp", paths.Online))
	assert.Equal(t,
		filepath.Join(base, "WEB-INF", "jsp", "offline", "sites", "a.jsp.jsp"),
		repo.RfsPath("/sites/a.jsp", paths.Offline))

	assert.Equal(t, "/WEB-INF/jsp/online/sites/a.jsp.jsp", repo.WebURI("/sites/a.jsp", paths.Online))
	assert.Equal(t, "/WEB-INF/jsp/offline/sites/a.jsp.jsp", repo.WebURI("/sites/a.jsp", paths.Offline))
}

func TestWebURI_SingleSeparator(t *testing.T) {
	// The configured folder keeps its trailing slash, yet exactly one slash
	// separates it from the realm: "/WEB-INF/jsp/online/...", never
	// "/WEB-INF/jsp//online/...".
	tests := []struct {
		name    string
		webPath string
		vfsPath string
		realm   paths.Realm
		want    string
	}{
		{"trailing slash", "/WEB-INF/jsp/", "/sites/a.jsp", paths.Online, "/WEB-INF/jsp/online/sites/a.jsp.jsp"},
		{"offline realm", "/WEB-INF/jsp/", "/b.jsp", paths.Offline, "/WEB-INF/jsp/offline/b.jsp.jsp"},
		{"relative vfs path", "/WEB-INF/jsp/", "b.jsp", paths.Online, "/WEB-INF/jsp/online/b.jsp.jsp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := paths.NewRepository(t.TempDir(), tt.webPath)
			require.NoError(t, err)
			got := repo.WebURI(tt.vfsPath, tt.realm)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "//")
		})
	}
}

func TestRealmIsolation(t *testing.T) {
	repo, err := paths.NewRepository(t.TempDir(), "/jsp/")
	require.NoError(t, err)

	online := repo.RfsPath("/x/y.jsp", paths.Online)
	offline := repo.RfsPath("/x/y.jsp", paths.Offline)

	assert.NotEqual(t, online, offline)
	assert.True(t, strings.HasPrefix(online, repo.RealmRoot(paths.Online)+string(filepath.Separator)))
	assert.True(t, strings.HasPrefix(offline, repo.RealmRoot(paths.Offline)+string(filepath.Separator)))
}

func TestAbsoluteURI(t *testing.T) {
	tests := []struct {
		name     string
		relative string
		base     string
		want     string
		wantErr  bool
	}{
		{"sibling", "b.jsp", "/a.jsp", "/b.jsp", false},
		{"nested_sibling", "b.jsp", "/sites/default/a.jsp", "/sites/default/b.jsp", false},
		{"absolute", "/system/b.jsp", "/sites/default/a.jsp", "/system/b.jsp", false},
		{"parent", "../b.jsp", "/sites/default/a.jsp", "/sites/b.jsp", false},
		{"dot_segments", "./inc/./b.jsp", "/sites/a.jsp", "/sites/inc/b.jsp", false},
		{"spaces_kept", "my file.jsp", "/sites/a.jsp", "/sites/my file.jsp", false},
		{"escapes_root", "../../b.jsp", "/sites/a.jsp", "", true},
		{"absolute_escape", "/../b.jsp", "/a.jsp", "", true},
		{"empty", "", "/a.jsp", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := paths.AbsoluteURI(tt.relative, tt.base)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPath))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateVFSPath(t *testing.T) {
	assert.NoError(t, paths.ValidateVFSPath("/sites/a.jsp"))
	assert.Error(t, paths.ValidateVFSPath("sites/a.jsp"))
	assert.Error(t, paths.ValidateVFSPath("/sites/../a.jsp"))
	assert.Error(t, paths.ValidateVFSPath("/./a.jsp"))
}

func TestRfsPathForWebURI(t *testing.T) {
	base := t.TempDir()
	repo, err := paths.NewRepository(base, "/WEB-INF/jsp/")
	require.NoError(t, err)

	got, ok := repo.RfsPathForWebURI(repo.WebURI("/sites/a.jsp", paths.Online))
	require.True(t, ok)
	assert.Equal(t, repo.RfsPath("/sites/a.jsp", paths.Online), got)

	_, ok = repo.RfsPathForWebURI("/other/online/a.jsp.jsp")
	assert.False(t, ok)
	_, ok = repo.RfsPathForWebURI("/WEB-INF/jsp/")
	assert.False(t, ok)
	_, ok = repo.RfsPathForWebURI("/WEB-INF/jsp/online/../../secret")
	assert.False(t, ok)
}
