package monitoring

type Config struct {
	Port             int    `default:"0"`
	URLPrefix        string `default:""`
	MetricEnabled    bool   `json:"metric_enabled"`
	ProfilingEnabled bool   `json:"profiling_enabled"`
}

func (c *Config) IsEnabled() bool { return c.Port > 0 && (c.MetricEnabled || c.ProfilingEnabled) }
