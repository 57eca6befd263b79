package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	// Config carries all deployment-tunable settings. It is loaded once at startup
	// and passed down explicitly; packages never read viper directly.
	Config struct {
		Debug            bool
		TestMode         bool
		Env              string
		AppName          string
		SecretKey        string
		Build            string
		WorkDir          string
		DefaultFromEmail string
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		Planning PlanningConfig
	}

	ServerConfig struct {
		Host               string
		Port               string
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	// PlanningConfig holds the deployment overrides for the calculation pipeline
	// constants (standard teaching loads, capacity ceilings, class-size bounds).
	// Zero values fall back to the pipeline defaults.
	PlanningConfig struct {
		StandardLoadSecondary float64
		StandardLoadPrimary   float64
		SchoolCapacity        int
		ClassSizeMin          int
		ClassSizeTarget       int
		ClassSizeMax          int
	}
)

func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c Config) DefaultFrom() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
}

// NewConfig loads configuration from defaults, an optional .env.<env> file
// and ENV-prefixed environment variables.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Bajeti")
	conf.SetDefault("secretKey", "x1u$+jc0f^qn#=&kx6#!q-3t9m(ah#%v*0h$d)mu0@p%8s7y5e")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("serverHost", "")
	conf.SetDefault("serverPort", "8000")
	conf.SetDefault("dbEngine", "postgres")
	conf.SetDefault("dbName", "bajeti")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", "5432")
	conf.SetDefault("dbDisableTLS", true)

	// pipeline constant overrides; 0 = use the pipeline defaults
	conf.SetDefault("planStandardLoadSecondary", float64(0))
	conf.SetDefault("planStandardLoadPrimary", float64(0))
	conf.SetDefault("planSchoolCapacity", 0)
	conf.SetDefault("planClassSizeMin", 0)
	conf.SetDefault("planClassSizeTarget", 0)
	conf.SetDefault("planClassSizeMax", 0)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	var testMode bool
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatal(fmt.Errorf("config.godotenv(%s): %v", dotEnvPath, err))
		}
	} else if !os.IsNotExist(err) {
		log.Fatal(fmt.Errorf("config.os.Stat(%s): %v", dotEnvPath, err))
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:            conf.GetBool("debug"),
		TestMode:         testMode,
		Env:              env,
		AppName:          conf.GetString("appName"),
		SecretKey:        conf.GetString("secretKey"),
		Build:            conf.GetString("build"),
		WorkDir:          wd,
		DefaultFromEmail: conf.GetString("defaultFromEmail"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               conf.GetString("serverHost"),
			Port:               conf.GetString("serverPort"),
			JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("dbEngine"),
			Name:          conf.GetString("dbName"),
			User:          conf.GetString("dbUser"),
			Password:      conf.GetString("dbPassword"),
			AdminUser:     conf.GetString("dbAdminUser"),
			AdminPassword: conf.GetString("dbAdminPassword"),
			Host:          conf.GetString("dbHost"),
			Port:          conf.GetString("dbPort"),
			DisableTLS:    conf.GetBool("dbDisableTLS"),
		},
		Planning: PlanningConfig{
			StandardLoadSecondary: conf.GetFloat64("planStandardLoadSecondary"),
			StandardLoadPrimary:   conf.GetFloat64("planStandardLoadPrimary"),
			SchoolCapacity:        conf.GetInt("planSchoolCapacity"),
			ClassSizeMin:          conf.GetInt("planClassSizeMin"),
			ClassSizeTarget:       conf.GetInt("planClassSizeTarget"),
			ClassSizeMax:          conf.GetInt("planClassSizeMax"),
		},
	}
}
