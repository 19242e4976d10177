// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/spf13/viper"
)

const (
	ScreenWidth        = 1200
	ScreenHeight       = 900
	BuildPhaseDuration = 5.0
	BaseHealth         = 100
	DamagePerEnemy     = 10
	StartingMoney      = 10
	MaxDeltaTime       = 0.06
	TickRate           = 60
	MaxMatchTime       = 3600.0
	IndicatorOffsetX   = 30
	IndicatorRadius    = 10.0
	AgentRadius        = 8.0
	NodeRadius         = 4.0
	TurretRadius       = 10.0

	// Сколько врагов может дойти до базы, прежде чем она падёт
	MaxEnemiesAllowedToPass = BaseHealth / DamagePerEnemy

	EnvPrefix = "TD"
)

var (
	BackgroundColor = color.RGBA{20, 20, 30, 255}
	PathColor       = color.RGBA{70, 100, 120, 220}
	EntryColor      = color.RGBA{0, 255, 0, 255}
	ExitColor       = color.RGBA{255, 0, 0, 255}
	TextLightColor  = color.RGBA{240, 240, 240, 255}
	BuildStateColor = color.RGBA{70, 130, 180, 220}
	WaveStateColor  = color.RGBA{220, 60, 60, 220}
	WinStateColor   = color.RGBA{50, 205, 50, 255}
	LoseStateColor  = color.RGBA{128, 128, 128, 255}
	EnemyColor      = color.RGBA{0, 0, 0, 255}
	FlyingColor     = color.RGBA{180, 50, 230, 255}
	SlowedColor     = color.RGBA{50, 100, 255, 255}
	TurretColor     = color.RGBA{255, 215, 0, 255}
)

// Settings is everything a match and its harness read at startup.
type Settings struct {
	Catalog string         `mapstructure:"catalog"`
	Level   LevelSettings  `mapstructure:"level"`
	Sim     SimSettings    `mapstructure:"sim"`
	Logger  LoggerSettings `mapstructure:"logger"`
}

// LevelSettings are the match rules.
type LevelSettings struct {
	BuildPhaseDuration      float64 `mapstructure:"build_phase_duration"`
	MaxEnemiesAllowedToPass int     `mapstructure:"max_enemies_allowed_to_pass"`
	AllowBuildingDuringWave bool    `mapstructure:"allow_building_during_wave"`
	StartingMoney           int     `mapstructure:"starting_money"`
}

// SimSettings control how the shared clock is stepped.
type SimSettings struct {
	TickRate     int     `mapstructure:"tick_rate"`
	MaxDeltaTime float64 `mapstructure:"max_delta_time"`
	MaxMatchTime float64 `mapstructure:"max_match_time"`
	Seed         int64   `mapstructure:"seed"`
}

// LoggerSettings configure internal/observability.
type LoggerSettings struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	ServiceName string `mapstructure:"service_name"`
	Development bool   `mapstructure:"development"`
	LogFile     string `mapstructure:"log_file"`
	MaxSize     int    `mapstructure:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
	Compress    bool   `mapstructure:"compress"`
}

// SetDefaults registers every key with its default so env overrides are seen by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("catalog", "")

	v.SetDefault("level.build_phase_duration", BuildPhaseDuration)
	v.SetDefault("level.max_enemies_allowed_to_pass", MaxEnemiesAllowedToPass)
	v.SetDefault("level.allow_building_during_wave", false)
	v.SetDefault("level.starting_money", StartingMoney)

	v.SetDefault("sim.tick_rate", TickRate)
	v.SetDefault("sim.max_delta_time", MaxDeltaTime)
	v.SetDefault("sim.max_match_time", MaxMatchTime)
	v.SetDefault("sim.seed", 0)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "td")
	v.SetDefault("logger.development", false)
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)
}

// Default returns the built-in settings.
func Default() Settings {
	v := viper.New()
	SetDefaults(v)
	s, err := FromViper(v)
	if err != nil {
		// дефолты всегда валидны
		panic(err)
	}
	return s
}

// Load reads path (TOML/YAML/JSON by extension, optional) and TD_* environment
// variables on top of the defaults.
func Load(path string) (Settings, error) {
	v := viper.New()
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper decodes and validates settings held by v.
func FromViper(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

var ErrInvalidSettings = errors.New("invalid settings")

func (s Settings) Validate() error {
	switch {
	case s.Level.BuildPhaseDuration < 0:
		return fmt.Errorf("%w: level.build_phase_duration must be >= 0", ErrInvalidSettings)
	case s.Level.MaxEnemiesAllowedToPass < 1:
		return fmt.Errorf("%w: level.max_enemies_allowed_to_pass must be >= 1", ErrInvalidSettings)
	case s.Level.StartingMoney < 0:
		return fmt.Errorf("%w: level.starting_money must be >= 0", ErrInvalidSettings)
	case s.Sim.TickRate < 1:
		return fmt.Errorf("%w: sim.tick_rate must be >= 1", ErrInvalidSettings)
	case s.Sim.MaxDeltaTime <= 0:
		return fmt.Errorf("%w: sim.max_delta_time must be > 0", ErrInvalidSettings)
	case s.Sim.MaxMatchTime <= 0:
		return fmt.Errorf("%w: sim.max_match_time must be > 0", ErrInvalidSettings)
	}
	return nil
}
