package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Name)
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	Pass string `mapstructure:"pass"`
	DB   int    `mapstructure:"db"`
}

type StorageConfig struct {
	MediaDir string `mapstructure:"media_dir"`
}

type STTConfig struct {
	OpenAiApiKey string `mapstructure:"open_ai_api_key"`
	Model        string `mapstructure:"model"`
	Language     string `mapstructure:"language"`
}

type DiarizerConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type PipelineConfig struct {
	ChunkSeconds  int `mapstructure:"chunk_seconds"`
	Concurrency   int `mapstructure:"concurrency"`
	RetryAttempts int `mapstructure:"retry_attempts"`
	RetryBase     int `mapstructure:"retry_base"`
}

type BriefConfig struct {
	Model string `mapstructure:"model"`
}

type AuthConfig struct {
	JWTSecret    string `mapstructure:"jwt_secret"`
	TokenTTLMins int    `mapstructure:"token_ttl_mins"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type Settings struct {
	DB       DBConfig       `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Storage  StorageConfig  `mapstructure:"storage"`
	STT      STTConfig      `mapstructure:"stt"`
	Diarizer DiarizerConfig `mapstructure:"diarizer"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Brief    BriefConfig    `mapstructure:"brief"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Server   ServerConfig   `mapstructure:"server"`
	Env      string         `mapstructure:"env"`
	Debug    bool           `mapstructure:"debug" default:"false"`
}

func Load() (*Settings, error) {
	viper.SetConfigName("config_" + genEnv())
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &settings, nil
}

func genEnv() string {
	env := viper.GetString("ENV")
	if env == "" {
		return "dev"
	}
	return env
}
