package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagScale      = flag.Float64("scale", 0, "Table units to scene units")
	flagTolerant   = flag.Bool("tolerant", false, "Keep partially decoded images")
	flagNoTextures = flag.Bool("no-textures", false, "Do not embed textures")
	flagTimeout    = flag.Duration("timeout", 0, "Conversion timeout per table")
	flagWidth      = flag.Int("width", 0, "Thumbnail width")
	flagHeight     = flag.Int("height", 0, "Thumbnail height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagScale > 0 {
		cfg.Convert.UnitScale = float32(*flagScale)
	}
	if *flagTolerant {
		cfg.Convert.TolerantImages = true
	}
	if *flagNoTextures {
		cfg.Convert.EmbedTextures = false
	}
	if *flagTimeout > 0 {
		cfg.Convert.Timeout = *flagTimeout
	}
	if *flagWidth > 0 {
		cfg.Thumbnail.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Thumbnail.Height = *flagHeight
	}
}
