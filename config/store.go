package config

import "sync/atomic"

// snapshot is an immutable view of the store contents. Writers build a
// new snapshot and publish it with a single pointer store; readers never
// observe a half-updated core/raw pair.
type snapshot struct {
	loaded      bool
	core        *CoreConfig
	raw         map[string]any
	plugins     map[string]*PluginConfig
	coreFile    string
	pluginFiles map[string]string
}

// clone returns a copy of the snapshot with fresh plugin maps so a writer
// can modify entries without touching the published view. The core record
// and raw mapping are shared; writers that change them must install new
// values.
func (s *snapshot) clone() *snapshot {
	plugins := make(map[string]*PluginConfig, len(s.plugins))
	for id, pc := range s.plugins {
		plugins[id] = pc
	}
	pluginFiles := make(map[string]string, len(s.pluginFiles))
	for id, name := range s.pluginFiles {
		pluginFiles[id] = name
	}
	return &snapshot{
		loaded:      s.loaded,
		core:        s.core,
		raw:         s.raw,
		plugins:     plugins,
		coreFile:    s.coreFile,
		pluginFiles: pluginFiles,
	}
}

// store holds the current configuration snapshot. It is exclusively owned
// by the Manager; all access goes through the façade.
type store struct {
	current atomic.Pointer[snapshot]
}

func newStore() *store {
	s := &store{}
	s.current.Store(&snapshot{
		raw:         make(map[string]any),
		plugins:     make(map[string]*PluginConfig),
		pluginFiles: make(map[string]string),
	})
	return s
}

// view returns the current snapshot. Safe for concurrent use.
func (s *store) view() *snapshot {
	return s.current.Load()
}

// replace publishes a new snapshot. Callers must hold the Manager lock.
func (s *store) replace(snap *snapshot) {
	s.current.Store(snap)
}
