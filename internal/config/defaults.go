package config

const (
	defaultDestDir          = "~/mediatorr/torrent"
	defaultStateDir         = "~/.local/share/mediatorr"
	defaultLogDir           = "~/.local/share/mediatorr/logs"
	defaultTMDBCacheDir     = "~/.local/share/mediatorr/cache/tmdb"
	defaultITunesCacheDir   = "~/.local/share/mediatorr/cache/itunes"
	defaultTMDBBaseURL      = "https://api.themoviedb.org/3"
	defaultTMDBLanguage     = "fr-FR"
	defaultTMDBFallback     = "en-US"
	defaultLookupTimeout    = 10
	defaultITunesBaseURL    = "https://itunes.apple.com"
	defaultMoviesSource     = "/films"
	defaultSeriesSource     = "/series"
	defaultMusicSource      = "/musiques"
	defaultParallelJobs     = 1
	defaultMinFreeGiB       = 5
	defaultMkbrrBinary      = "mkbrr"
	defaultMediaInfoBinary  = "mediainfo"
	defaultPythonBinary     = "python3"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultPresentationBase = "https://raw.githubusercontent.com/JohanDevl/mediatorr/main/assets/images"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DestDir:        defaultDestDir,
			StateDir:       defaultStateDir,
			LogDir:         defaultLogDir,
			TMDBCacheDir:   defaultTMDBCacheDir,
			ITunesCacheDir: defaultITunesCacheDir,
		},
		TMDB: TMDB{
			BaseURL:          defaultTMDBBaseURL,
			Language:         defaultTMDBLanguage,
			FallbackLanguage: defaultTMDBFallback,
			TimeoutSeconds:   defaultLookupTimeout,
		},
		ITunes: ITunes{
			BaseURL:        defaultITunesBaseURL,
			TimeoutSeconds: defaultLookupTimeout,
		},
		Movies: Library{Sources: []string{defaultMoviesSource}},
		Series: Library{Sources: []string{defaultSeriesSource}},
		Music:  Library{Sources: []string{defaultMusicSource}},
		Scan: Scan{
			ParallelJobs: defaultParallelJobs,
			MinFreeGiB:   defaultMinFreeGiB,
		},
		Presentation: Presentation{
			Enabled: true,
			Images: PresentationImages{
				Info:     defaultPresentationBase + "/info.png",
				Synopsis: defaultPresentationBase + "/synopsis.png",
				Movie:    defaultPresentationBase + "/movie.png",
				Serie:    defaultPresentationBase + "/serie.png",
				Download: defaultPresentationBase + "/download.png",
				Link:     defaultPresentationBase + "/link.png",
			},
		},
		Tools: Tools{
			Mkbrr:     defaultMkbrrBinary,
			MediaInfo: defaultMediaInfoBinary,
			Python:    defaultPythonBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
