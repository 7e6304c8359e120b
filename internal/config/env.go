package config

import (
	"errors"
	"io/fs"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Env struct {
	AppAddr            string
	GinMode            string
	DBDSN              string
	CORSAllowedOrigins []string
	LogQueries         bool
}

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// LoadEnv reads ./.env when present, then lets process env override it.
func LoadEnv() Env {
	return LoadEnvFile(".env")
}

func LoadEnvFile(path string) Env {
	v := viper.New()
	v.SetDefault("app_addr", ":8080")
	v.SetDefault("gin_mode", "")
	v.SetDefault("db_dsn", "")
	v.SetDefault("cors_allowed_origins", "")
	v.SetDefault("log_queries", false)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				log.Printf("[CONFIG] action=read_env_file path=%s err=%v", path, err)
			}
		}
	}
	v.AutomaticEnv()

	appAddr := strings.TrimSpace(v.GetString("app_addr"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	return Env{
		AppAddr:            appAddr,
		GinMode:            strings.TrimSpace(v.GetString("gin_mode")),
		DBDSN:              strings.TrimSpace(v.GetString("db_dsn")),
		CORSAllowedOrigins: splitOrigins(v.GetString("cors_allowed_origins")),
		LogQueries:         v.GetBool("log_queries"),
	}
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultOrigins...)
	}
	return out
}
