package config

// PluginConfig is the settings record for a single plugin. Beyond the
// identity and enable flag, keys in Config are permitted but untyped.
type PluginConfig struct {
	PluginID string         `yaml:"plugin_id"`
	Enabled  bool           `yaml:"enabled"`
	Config   map[string]any `yaml:"config"`
}

// pluginFile is the recognized shape of a plugin configuration file.
// Enabled is a pointer so an absent key keeps the default of true.
type pluginFile struct {
	Enabled *bool          `yaml:"enabled"`
	Config  map[string]any `yaml:"config"`
}

// validatePlugin builds a PluginConfig from its parts. Only the plugin id
// is constrained; a nil config mapping becomes an empty one. Inputs are
// not mutated.
func validatePlugin(pluginID string, enabled bool, configMap map[string]any) (*PluginConfig, error) {
	if pluginID == "" {
		return nil, ValidationErrors{{
			Path:    "plugin_id",
			Message: "is required and must be a non-empty string",
		}}
	}

	if configMap == nil {
		configMap = make(map[string]any)
	}

	return &PluginConfig{
		PluginID: pluginID,
		Enabled:  enabled,
		Config:   configMap,
	}, nil
}
