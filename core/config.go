package core

import (
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string // DEV (local; default), TEST, QA, PROD
	Debug    bool
	TestMode bool
	AppName  string
	Build    string

	Server struct {
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	RollbarToken     string
	SendgridApiKey   string
	DefaultFromEmail string

	Alerts struct {
		Recipients []string
	}

	Roster struct {
		SeedSample bool
	}
}

// NewConfig loads the configuration from defaults, an optional `config/.env.<env>` file and the environment.
func NewConfig() *Config {
	conf, err := LoadConfig(os.Getenv("ENV"), "config")
	if err != nil {
		panic(err)
	}
	return conf
}

// LoadConfig builds a Config for the given env. dotEnvDir may be empty.
func LoadConfig(env, dotEnvDir string) (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Dropwatch")
	v.SetDefault("build", "dev")
	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":8001")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "Dropwatch <noreply@localhost>")
	v.SetDefault("alerts.recipients", "") // comma separated
	v.SetDefault("roster.seedSample", false)

	env = strings.ToUpper(strings.TrimSpace(env))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if dotEnvDir != "" {
		dotEnvPath := filepath.Join(dotEnvDir, ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
		}
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
	}
	conf.Server.Host = v.GetString("server.host")
	conf.Server.DebugHost = v.GetString("server.debugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Alerts.Recipients = splitList(v.GetString("alerts.recipients"))
	conf.Roster.SeedSample = v.GetBool("roster.seedSample")

	if _, err := mail.ParseAddress(conf.DefaultFromEmail); err != nil {
		return nil, errors.Wrap(err, "parsing defaultFromEmail")
	}
	return conf, nil
}

// DefaultFromAddress returns the parsed DefaultFromEmail.
func (c *Config) DefaultFromAddress() mail.Address {
	addr, err := mail.ParseAddress(c.DefaultFromEmail)
	if err != nil {
		return mail.Address{Address: c.DefaultFromEmail}
	}
	return *addr
}

// AlertAddresses returns the parsed alert recipients, skipping invalid ones.
func (c *Config) AlertAddresses() []mail.Address {
	addrs := make([]mail.Address, 0, len(c.Alerts.Recipients))
	for _, r := range c.Alerts.Recipients {
		if addr, err := mail.ParseAddress(r); err == nil {
			addrs = append(addrs, *addr)
		}
	}
	return addrs
}

// env vars hold lists as "a@b.c,Name <d@e.f>"
func splitList(val string) []string {
	out := make([]string, 0)
	for _, s := range strings.Split(val, ",") {
		if s = CleanString(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
