package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			StorageKey:    "tdfoco_view_history",
			MaxEntries:    100,
			RetentionDays: 30,
			RecentDays:    7,
		},
		Recommend: RecommendConfig{
			DefaultLimit:       12,
			FavoriteCategories: 3,
			Jitter:             5,
			Seed:               0,
		},
		Storage: StorageConfig{
			Path:        "~/.config/viewlog",
			SQLiteFile:  "viewlog.db",
			JournalMode: "wal",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}
