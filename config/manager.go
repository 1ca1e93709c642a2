package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is where configuration files are resolved unless
	// WithConfigDir overrides it.
	DefaultConfigDir = "config"

	// DefaultCoreFile is the core configuration file name used by Load.
	DefaultCoreFile = "core.yaml"

	// corePrefix selects environment overrides for the core configuration.
	corePrefix = "CORE"

	// pluginPrefix starts the override prefix for every plugin
	// (PLUGIN_<ID>_<KEY>).
	pluginPrefix = "PLUGIN_"
)

// Manager is the configuration façade. It loads, validates, merges, and
// serves the core and per-plugin configuration. All mutating operations
// serialize on an exclusive lock; readers work lock-free against an
// immutable snapshot.
type Manager struct {
	mu      sync.Mutex
	store   *store
	dir     string
	logger  *zap.Logger
	metrics *Metrics
	environ func() []string
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfigDir sets the directory configuration files are resolved
// against.
func WithConfigDir(dir string) Option {
	return func(m *Manager) {
		m.dir = dir
	}
}

// WithLogger sets the logger used for reload and watcher reporting.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMetrics enables metric recording for load and reload outcomes.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithEnviron sets the environment source. It defaults to os.Environ and
// is read fresh on every load, never cached.
func WithEnviron(environ func() []string) Option {
	return func(m *Manager) {
		m.environ = environ
	}
}

// New creates a fresh Manager that shares no state with any other
// instance. Most callers want Default; New exists for isolated instances,
// primarily in tests.
func New(opts ...Option) *Manager {
	m := &Manager{
		store:   newStore(),
		dir:     DefaultConfigDir,
		logger:  zap.NewNop(),
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var (
	defaultManager *Manager
	defaultOnce    sync.Once
)

// Default returns the process-wide Manager instance, creating it on first
// use. Every call returns the same instance; it is shared between the
// application bootstrap and all plugin hosts.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = New()
	})
	return defaultManager
}

// Load resolves and loads the default core configuration file. See
// LoadFile.
func (m *Manager) Load() error {
	return m.LoadFile(DefaultCoreFile)
}

// LoadFile loads the named core configuration file from the config
// directory, merges CORE_-prefixed environment overrides, validates the
// result, and atomically replaces the current core configuration and raw
// mapping. On failure the previously loaded state, if any, is retained
// untouched.
func (m *Manager) LoadFile(coreFileName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.loadLocked(coreFileName)
	m.metrics.recordCoreLoad(err)
	return err
}

func (m *Manager) loadLocked(coreFileName string) error {
	if coreFileName == "" {
		coreFileName = DefaultCoreFile
	}
	path := filepath.Join(m.dir, coreFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &NotFoundError{Path: path}
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &ParseError{Path: path, Err: err}
	}
	if doc == nil {
		doc = make(map[string]any)
	}

	merged := applyOverrides(doc, corePrefix, m.environMap())

	core, err := validateCore(merged)
	if err != nil {
		return err
	}

	snap := m.store.view().clone()
	snap.loaded = true
	snap.core = core
	snap.raw = merged
	snap.coreFile = coreFileName
	m.store.replace(snap)

	m.logger.Info("core configuration loaded",
		zap.String("path", path),
		zap.String("environment", core.Environment),
	)
	return nil
}

// LoadPluginConfig loads configuration for one plugin, merging
// PLUGIN_<ID>_ environment overrides onto the file's config mapping. A
// named file that does not exist contributes no base config and is not an
// error. The validated record replaces any prior entry for the plugin id
// and is returned.
func (m *Manager) LoadPluginConfig(pluginID, configFileName string) (*PluginConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pc, err := m.loadPluginLocked(pluginID, configFileName)
	m.metrics.recordPluginLoad(err)
	return pc, err
}

func (m *Manager) loadPluginLocked(pluginID, configFileName string) (*PluginConfig, error) {
	enabled := true
	configMap := make(map[string]any)

	if configFileName != "" {
		path := filepath.Join(m.dir, configFileName)
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var doc pluginFile
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return nil, &ParseError{Path: path, Err: err}
			}
			if doc.Enabled != nil {
				enabled = *doc.Enabled
			}
			if doc.Config != nil {
				configMap = doc.Config
			}
		case os.IsNotExist(err):
			// No base config; overrides and defaults still apply.
		default:
			return nil, fmt.Errorf("failed to read plugin config file %s: %w", path, err)
		}
	}

	prefix := pluginPrefix + strings.ReplaceAll(strings.ToUpper(pluginID), "-", "_")
	configMap = applyOverrides(configMap, prefix, m.environMap())

	pc, err := validatePlugin(pluginID, enabled, configMap)
	if err != nil {
		return nil, err
	}

	snap := m.store.view().clone()
	snap.plugins[pluginID] = pc
	snap.pluginFiles[pluginID] = configFileName
	m.store.replace(snap)
	m.metrics.setPluginsLoaded(len(snap.plugins))

	return pc, nil
}

// Reload re-loads the core configuration with the file name used
// previously, then re-loads every known plugin with the file name recorded
// at its first load. A failure reloading one plugin is logged and does not
// abort the reload of the core configuration or of other plugins.
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.store.view()

	coreFile := prev.coreFile
	if coreFile == "" {
		coreFile = DefaultCoreFile
	}
	if err := m.loadLocked(coreFile); err != nil {
		m.metrics.recordReload(err)
		return err
	}

	ids := make([]string, 0, len(prev.plugins))
	for id := range prev.plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if _, err := m.loadPluginLocked(id, prev.pluginFiles[id]); err != nil {
			m.logger.Warn("plugin configuration reload failed",
				zap.String("plugin_id", id),
				zap.Error(err),
			)
		}
	}

	m.metrics.recordReload(nil)
	return nil
}

// CoreConfig returns the validated core configuration. It fails with
// ErrNotLoaded before the first successful Load.
func (m *Manager) CoreConfig() (*CoreConfig, error) {
	snap := m.store.view()
	if !snap.loaded {
		return nil, ErrNotLoaded
	}
	return snap.core, nil
}

// PluginConfig returns the configuration for the given plugin id and
// whether it has been loaded. It never fails.
func (m *Manager) PluginConfig(pluginID string) (*PluginConfig, bool) {
	pc, ok := m.store.view().plugins[pluginID]
	return pc, ok
}

// Get navigates a dot-separated key path against the raw merged mapping.
// It returns def if the manager is not loaded, any path segment is
// absent, or an intermediate value is not a mapping. It never panics.
func (m *Manager) Get(key string, def any) any {
	snap := m.store.view()
	if !snap.loaded {
		return def
	}
	value, ok := getPath(snap.raw, strings.Split(key, pathDelimiter))
	if !ok {
		return def
	}
	return value
}

// GetString returns the value at key as a string, or def when the value
// is absent or not a string.
func (m *Manager) GetString(key, def string) string {
	if s, ok := m.Get(key, def).(string); ok {
		return s
	}
	return def
}

// GetInt returns the value at key as an int, or def when the value is
// absent or not numeric. Whole-number floats convert.
func (m *Manager) GetInt(key string, def int) int {
	switch v := m.Get(key, def).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
	}
	return def
}

// GetBool returns the value at key as a bool, or def when the value is
// absent or not a boolean.
func (m *Manager) GetBool(key string, def bool) bool {
	if b, ok := m.Get(key, def).(bool); ok {
		return b
	}
	return def
}

// Set assigns value at a dot-separated key path in the raw merged
// mapping, creating intermediate mappings as needed. The change is
// process-local and non-persistent: it is never written back to the
// configuration file and is discarded by the next Load or Reload.
func (m *Manager) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.store.view().clone()
	raw := deepCopyMap(snap.raw)
	if raw == nil {
		raw = make(map[string]any)
	}
	setPath(raw, strings.Split(key, pathDelimiter), value)
	snap.raw = raw
	m.store.replace(snap)
}

// IsLoaded reports whether a Load has succeeded.
func (m *Manager) IsLoaded() bool {
	return m.store.view().loaded
}

// ConfigDir returns the directory configuration files are resolved
// against.
func (m *Manager) ConfigDir() string {
	return m.dir
}

// environMap reads the environment source into a name → value mapping.
func (m *Manager) environMap() map[string]string {
	env := m.environ()
	out := make(map[string]string, len(env))
	for _, kv := range env {
		if i := strings.IndexByte(kv, '='); i > 0 {
			out[kv[:i]] = kv[i+1:]
		}
	}
	return out
}
