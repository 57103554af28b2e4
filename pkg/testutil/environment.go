package testutil

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arthur-debert/jsploader/pkg/cms"
	"github.com/arthur-debert/jsploader/pkg/engine"
	"github.com/arthur-debert/jsploader/pkg/filesystem"
	"github.com/arthur-debert/jsploader/pkg/flex"
	"github.com/arthur-debert/jsploader/pkg/loader"
	"github.com/arthur-debert/jsploader/pkg/metrics"
	"github.com/arthur-debert/jsploader/pkg/vfs"
)

// EnvType defines the type of test environment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in temp directory
)

// Authored is the modification time given to resources created by
// WithFileTree. It lies in the past so that fresh materialisations are newer.
var Authored = time.Now().Add(-time.Hour).Truncate(time.Second)

// FileTree represents VFS content: a string is a file, a nested FileTree a
// folder.
type FileTree map[string]interface{}

// TestEnvironment provides a complete test environment with all dependencies
type TestEnvironment struct {
	// Core paths
	VFSRoot string
	Webapp  string

	// Core dependencies
	Tree     *vfs.Tree
	RFS      filesystem.FS
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Environment type
	Type EnvType

	t       *testing.T
	tempDir string
}

// NewTestEnvironment creates a new test environment
func NewTestEnvironment(t *testing.T, envType EnvType) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{
		t:        t,
		Type:     envType,
		Registry: prometheus.NewRegistry(),
		Metrics:  metrics.New(),
	}
	env.Metrics.RegisterMetrics(env.Registry)

	switch envType {
	case EnvMemoryOnly:
		env.setupMemoryEnvironment()
	case EnvIsolated:
		env.setupIsolatedEnvironment()
	default:
		t.Fatalf("unknown environment type %d", envType)
	}

	return env
}

func (env *TestEnvironment) setupMemoryEnvironment() {
	env.VFSRoot = "/"
	env.Webapp = "/webapp"
	env.Tree = vfs.NewMemory()
	env.RFS = filesystem.NewMemory()
}

func (env *TestEnvironment) setupIsolatedEnvironment() {
	env.tempDir = env.t.TempDir()
	env.VFSRoot = filepath.Join(env.tempDir, "vfs")
	env.Webapp = filepath.Join(env.tempDir, "webapp")

	// Keep config lookups and the log file away from the user's home
	env.t.Setenv("XDG_CONFIG_HOME", filepath.Join(env.tempDir, "config"))
	env.t.Setenv("XDG_STATE_HOME", filepath.Join(env.tempDir, "state"))

	if err := os.MkdirAll(env.VFSRoot, 0755); err != nil {
		env.t.Fatalf("Failed to create VFS root: %v", err)
	}
	tree, err := vfs.Open(env.VFSRoot, "")
	if err != nil {
		env.t.Fatalf("Failed to open VFS: %v", err)
	}
	env.Tree = tree
	env.RFS = filesystem.NewOS()
}

// WithFileTree writes tree into the VFS, every file modified at Authored
func (env *TestEnvironment) WithFileTree(tree FileTree) {
	env.t.Helper()
	env.writeTree("/", tree)
}

func (env *TestEnvironment) writeTree(base string, tree FileTree) {
	env.t.Helper()

	for name, content := range tree {
		full := path.Join(base, name)

		switch v := content.(type) {
		case string:
			if err := env.Tree.WriteFile(full, []byte(v), Authored); err != nil {
				env.t.Fatalf("Failed to write file %s: %v", full, err)
			}
		case FileTree:
			env.writeTree(full, v)
		default:
			env.t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}

// Cms returns a CMS handle for uri
func (env *TestEnvironment) Cms(uri string, online bool) *cms.Object {
	return cms.New(env.Tree, cms.RequestContext{URI: uri, Online: online})
}

// Resource reads the header of path, failing the test when it is missing
func (env *TestEnvironment) Resource(path string) *vfs.Resource {
	env.t.Helper()
	resource, err := env.Tree.ReadResource(path)
	if err != nil {
		env.t.Fatalf("Failed to read resource %s: %v", path, err)
	}
	return resource
}

// Loader returns a loader initialised against the environment. The
// passthrough engine serves materialised copies from the RFS.
func (env *TestEnvironment) Loader(params map[string]string) (*loader.JspLoader, flex.Cache) {
	env.t.Helper()

	cache, err := flex.NewLRUCache(flex.DefaultCacheSize)
	if err != nil {
		env.t.Fatalf("Failed to create cache: %v", err)
	}

	l := loader.New()
	for name, value := range params {
		if err := l.AddConfigurationParameter(name, value); err != nil {
			env.t.Fatalf("Failed to add parameter %s: %v", name, err)
		}
	}
	err = l.Initialize(loader.Runtime{
		System:     cms.SystemInfo{DefaultEncoding: cms.DefaultEncoding, WebApplicationRfsPath: env.Webapp},
		Cache:      cache,
		Dispatcher: engine.NewPassthrough(env.RFS),
		RFS:        env.RFS,
		Metrics:    env.Metrics,
	})
	if err != nil {
		env.t.Fatalf("Failed to initialize loader: %v", err)
	}
	return l, cache
}

// WriteConfig writes an application config file pointing at the
// environment and returns its path. Only EnvIsolated environments have one.
func (env *TestEnvironment) WriteConfig() string {
	env.t.Helper()
	if env.Type != EnvIsolated {
		env.t.Fatalf("WriteConfig needs an isolated environment")
	}

	configPath := filepath.Join(env.tempDir, "jsploader.toml")
	contents := fmt.Sprintf("[vfs]\nroot = %q\n\n[system]\nwebapp = %q\n", env.VFSRoot, env.Webapp)
	if err := os.WriteFile(configPath, []byte(contents), 0644); err != nil {
		env.t.Fatalf("Failed to write config: %v", err)
	}
	return configPath
}
