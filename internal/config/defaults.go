package config

const (
	defaultDataDir              = "~/.local/share/curator"
	defaultLogDir               = "~/.local/share/curator/logs"
	defaultAPIBind              = "127.0.0.1:5000"
	defaultBackendBaseURL       = "http://127.0.0.1:5000"
	defaultPriorityForum        = "SMPchat"
	defaultBackendTimeout       = 30
	defaultLLMBaseURL           = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel             = "google/gemini-3-flash-preview"
	defaultLLMTitle             = "Curator Reply Drafter"
	defaultLLMTimeoutSeconds    = 60
	defaultRedditBaseURL        = "https://oauth.reddit.com"
	defaultRedditTokenURL       = "https://www.reddit.com/api/v1/access_token"
	defaultRedditUserAgent      = "curator/dev"
	defaultRedditTimeout        = 15
	defaultScanInterval         = 1800
	defaultScanLimit            = 50
	defaultPriorityWindowHours  = 72
	defaultDefaultWindowHours   = 24
	defaultRetentionMaxAgeHours = 72
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

func defaultSubreddits() []string {
	return []string{"SMPchat", "Hairloss", "bald", "tressless"}
}

func defaultKeywords() []string {
	return []string{
		"smp", "hair", "scalp", "bald", "follicle", "loss", "density",
		"microblading", "tattoo", "pigmentation", "hairline", "scar", "scars",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Backend: Backend{
			BaseURL:        defaultBackendBaseURL,
			PriorityForum:  defaultPriorityForum,
			RequestTimeout: defaultBackendTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Reddit: Reddit{
			UserAgent:      defaultRedditUserAgent,
			BaseURL:        defaultRedditBaseURL,
			TokenURL:       defaultRedditTokenURL,
			RequestTimeout: defaultRedditTimeout,
		},
		Scraper: Scraper{
			Subreddits:          defaultSubreddits(),
			Keywords:            defaultKeywords(),
			ScanInterval:        defaultScanInterval,
			ScanLimit:           defaultScanLimit,
			PriorityWindowHours: defaultPriorityWindowHours,
			DefaultWindowHours:  defaultDefaultWindowHours,
		},
		Retention: Retention{
			MaxAgeHours: defaultRetentionMaxAgeHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
