package config

const (
	defaultBind    = "127.0.0.1:8480"
	defaultBaseURL = "http://localhost:8480"

	defaultStoreBackend = "memory"

	defaultLogDir  = "~/.local/share/swansong/logs"
	defaultDataDir = "~/.local/share/swansong/data"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultLyricsBaseURL        = "http://localhost:5000"
	defaultLyricsTimeoutSeconds = 30

	defaultReplicateBaseURL      = "https://api.replicate.com/v1"
	defaultReplicatePollInterval = 2

	// Model version pins for the generative stages. These track the upstream
	// model revisions the pipeline is known to work with.
	defaultMusicVersion = "minimax/music-1.5:5080f14bbbfd3da1cf1387fa8799ce3c24ae7c9f43c2b9f406657d2e70784446"
	defaultVoiceVersion = "lucataco/singing_voice_conversion:6c2ff4836d8acc30e3c89c81bfe555f6a7ac9de4fa61dbc4bc92f3cc90a6d02e"
	defaultVideoVersion = "bytedance/omni-human:27ff118087d512ffb93b1d115bbf46c96e51b25dfb4ee30337d6fa9bece05f4a"

	defaultMusicTimeoutSeconds = 300
	defaultVoiceTimeoutSeconds = 180
	defaultVideoTimeoutSeconds = 600

	defaultMusicStylePrompt = "upbeat corporate jingle, cheerful pop, bright synths, 30 seconds"
	defaultTargetVoice      = "vocalist_female_1"

	defaultMinLyricWords = 15
	defaultMaxLyricWords = 50

	defaultMailBaseURL        = "https://api.resend.com"
	defaultMailFrom           = "HR Department <hr@swansong.example>"
	defaultMailSubject        = "Urgent: Performance Review Meeting - Join Now"
	defaultMailTimeoutSeconds = 10
)

// DefaultStages lists the pipeline stages enabled out of the box. Voice
// conversion ships disabled; the music output feeds the video stage directly.
func DefaultStages() []string {
	return []string{"lyrics", "music", "video"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Bind:    defaultBind,
			BaseURL: defaultBaseURL,
		},
		Store: Store{
			Backend: defaultStoreBackend,
		},
		Lyrics: Lyrics{
			BaseURL:        defaultLyricsBaseURL,
			TimeoutSeconds: defaultLyricsTimeoutSeconds,
		},
		Replicate: Replicate{
			BaseURL:             defaultReplicateBaseURL,
			PollIntervalSeconds: defaultReplicatePollInterval,
			MusicVersion:        defaultMusicVersion,
			VoiceVersion:        defaultVoiceVersion,
			VideoVersion:        defaultVideoVersion,
		},
		Pipeline: Pipeline{
			Stages:           DefaultStages(),
			LyricsTimeout:    defaultLyricsTimeoutSeconds,
			MusicTimeout:     defaultMusicTimeoutSeconds,
			VoiceTimeout:     defaultVoiceTimeoutSeconds,
			VideoTimeout:     defaultVideoTimeoutSeconds,
			MusicStylePrompt: defaultMusicStylePrompt,
			TargetVoice:      defaultTargetVoice,
			MinLyricWords:    defaultMinLyricWords,
			MaxLyricWords:    defaultMaxLyricWords,
		},
		Mail: Mail{
			BaseURL:        defaultMailBaseURL,
			From:           defaultMailFrom,
			Subject:        defaultMailSubject,
			TimeoutSeconds: defaultMailTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Paths: Paths{
			LogDir:  defaultLogDir,
			DataDir: defaultDataDir,
		},
	}
}
