package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string `mapstructure:"PORT"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	DatabasePath       string `mapstructure:"DATABASE_PATH"`
	GithubClientID     string `mapstructure:"GITHUB_CLIENT_ID"`
	GithubClientSecret string `mapstructure:"GITHUB_CLIENT_SECRET"`
	GithubRedirectURL  string `mapstructure:"GITHUB_REDIRECT_URL"`
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	FrontendURL        string `mapstructure:"FRONTEND_URL"`
	EnableCORS         bool   `mapstructure:"ENABLE_CORS"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "stackquest.db")
	viper.SetDefault("GITHUB_REDIRECT_URL", "http://127.0.0.1:8080/auth/github/callback")
	viper.SetDefault("FRONTEND_URL", "http://127.0.0.1:3000")

	viper.BindEnv("DATABASE_URL")
	viper.BindEnv("GITHUB_CLIENT_ID")
	viper.BindEnv("GITHUB_CLIENT_SECRET")
	viper.BindEnv("GITHUB_REDIRECT_URL")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("FRONTEND_URL")
	viper.BindEnv("ENABLE_CORS")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
