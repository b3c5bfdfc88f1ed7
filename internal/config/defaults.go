package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/substream/data/tvshow.db"
	}
	if cfg.Model.TermWeight == 0 {
		cfg.Model.TermWeight = 2.0
	}
	if cfg.Model.SynopsisWeight == 0 {
		cfg.Model.SynopsisWeight = 0.6
	}
	if cfg.Model.BigramWeight == 0 {
		cfg.Model.BigramWeight = 0.3
	}
	if cfg.Model.MaxRepeat == 0 {
		cfg.Model.MaxRepeat = 8
	}
	if cfg.Search.VectorWeight == 0 {
		cfg.Search.VectorWeight = 0.7
	}
	if cfg.Search.KeywordWeight == 0 {
		cfg.Search.KeywordWeight = 0.3
	}
	if cfg.Search.MinCombinedScore == 0 {
		cfg.Search.MinCombinedScore = 0.25
	}
	if cfg.Search.MinVectorScore == 0 {
		cfg.Search.MinVectorScore = 0.05
	}
	if cfg.Search.CoverageBonus == 0 {
		cfg.Search.CoverageBonus = 0.05
	}
	if cfg.Search.HybridLimit == 0 {
		cfg.Search.HybridLimit = 10
	}
	if cfg.Search.VectorLimit == 0 {
		cfg.Search.VectorLimit = 50
	}
	if cfg.Search.RecommendLimit == 0 {
		cfg.Search.RecommendLimit = 5
	}
}
