package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"

	"github.com/totegamma/weird/internal/domain"
)

type Config struct {
	Server   Server        `yaml:"server"`
	Instance domain.Config `yaml:"instance"`
	HTTP     HTTP          `yaml:"http"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

// HTTP configures outbound requests. The proxy environment variables are
// only honored when ProxyFromEnvironment is set.
type HTTP struct {
	UserAgent            string        `yaml:"userAgent"`
	Proxy                string        `yaml:"proxy"`
	ProxyFromEnvironment bool          `yaml:"proxyFromEnvironment"`
	VerifyTimeout        time.Duration `yaml:"verifyTimeout"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	config.setDefaults()

	return config, nil
}

func (c *Config) setDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8000"
	}
	if c.Instance.Namespace == "" {
		c.Instance.Namespace = "weird"
	}
	if c.HTTP.VerifyTimeout == 0 {
		c.HTTP.VerifyTimeout = 10 * time.Second
	}
}
