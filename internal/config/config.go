package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"artassist/internal/dirs"
	"artassist/internal/util"
)

// Settings is the typed view of the app configuration.
type Settings struct {
	Server struct {
		URL            string        `mapstructure:"url"`
		WebUIPath      string        `mapstructure:"webui_path"`
		BootArgs       string        `mapstructure:"boot_args"`
		StartupTimeout time.Duration `mapstructure:"startup_timeout"`
		APITimeout     time.Duration `mapstructure:"api_timeout"`
	} `mapstructure:"server"`

	Model struct {
		Keyword string `mapstructure:"keyword"`
	} `mapstructure:"model"`

	Output struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"output"`

	Generation Generation `mapstructure:"generation"`

	Progress struct {
		PollInterval   time.Duration `mapstructure:"poll_interval"`
		NoiseThreshold float64       `mapstructure:"noise_threshold"`
		FirstPollGuard float64       `mapstructure:"first_poll_guard"`
	} `mapstructure:"progress"`

	Prompt struct {
		HintLanguage string `mapstructure:"hint_language"`
		Translate    bool   `mapstructure:"translate"`
	} `mapstructure:"prompt"`

	Verbose bool `mapstructure:"verbose"`
}

// Generation holds the fixed parts of every img2img payload plus the
// label-to-strength tables for both pipelines.
type Generation struct {
	Steps            int                `mapstructure:"steps"`
	CFGScale         float64            `mapstructure:"cfg_scale"`
	Sampler          string             `mapstructure:"sampler"`
	Scheduler        string             `mapstructure:"scheduler"`
	MaxSide          int                `mapstructure:"max_side"`
	CleanupStrength  map[string]float64 `mapstructure:"cleanup_strength"`
	FaceFixStrength  map[string]float64 `mapstructure:"facefix_strength"`
	DetailConfidence float64            `mapstructure:"detail_confidence"`
}

// Init wires Viper with config paths, env, defaults, and flag bindings.
// It is non-fatal: any errors are returned for optional handling by caller.
func Init(root *cobra.Command) error {
	// Ensure base directories exist
	_ = dirs.EnsureAll()

	// Setup config search path
	if cfgDir, err := dirs.ConfigDir(); err == nil {
		_ = dirs.Ensure(cfgDir)
		viper.AddConfigPath(cfgDir)
	}
	viper.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	// Environment variables: ARTASSIST_*
	viper.SetEnvPrefix("ARTASSIST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Bind root persistent flags to Viper keys
	_ = viper.BindPFlag("server.url", root.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("model.keyword", root.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("output.dir", root.PersistentFlags().Lookup("out-dir"))
	_ = viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	// Read config file if present (ignore not found)
	_ = viper.ReadInConfig()

	return nil
}

func setDefaults() {
	viper.SetDefault("server.url", "http://127.0.0.1:7860")
	viper.SetDefault("server.webui_path", "")
	viper.SetDefault("server.boot_args", "")
	viper.SetDefault("server.startup_timeout", 2*time.Minute)
	viper.SetDefault("server.api_timeout", 10*time.Minute)

	viper.SetDefault("model.keyword", "waiNSFWIllustrious")

	viper.SetDefault("output.dir", "")

	viper.SetDefault("generation.steps", 20)
	viper.SetDefault("generation.cfg_scale", 7.0)
	viper.SetDefault("generation.sampler", "Euler a")
	viper.SetDefault("generation.scheduler", "Automatic")
	viper.SetDefault("generation.max_side", 2048)
	viper.SetDefault("generation.cleanup_strength", map[string]float64{
		"weak": 0.3, "medium": 0.4, "strong": 0.5,
	})
	viper.SetDefault("generation.facefix_strength", map[string]float64{
		"weak": 0.3, "medium": 0.5, "strong": 0.7,
	})
	viper.SetDefault("generation.detail_confidence", 0.3)

	viper.SetDefault("progress.poll_interval", 3*time.Second)
	viper.SetDefault("progress.noise_threshold", 10.0)
	viper.SetDefault("progress.first_poll_guard", 0.05)

	viper.SetDefault("prompt.hint_language", "ja")
	viper.SetDefault("prompt.translate", true)
}

// Load unmarshals the current Viper state into Settings and fills the
// values that depend on the host environment.
func Load() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	base, err := util.NormalizeServerURL(s.Server.URL)
	if err != nil {
		return nil, err
	}
	s.Server.URL = base

	if s.Output.Dir == "" {
		out, err := dirs.DefaultOutputDir()
		if err != nil {
			return nil, fmt.Errorf("resolve output dir: %w", err)
		}
		s.Output.Dir = out
	}
	return &s, nil
}
