// Package config holds the crawler's configuration file format.
package config

import (
	"errors"
	"os"
	"time"

	"carcatalog/internal/autohome"
	"carcatalog/lib/configutil"
	"carcatalog/lib/telemetry"

	"dario.cat/mergo"
)

// DefaultName is the file looked up when no config path is given.
const DefaultName = "carcrawler.json5"

type EndpointsConfig struct {
	Brands    string `json:"brands"`
	Site      string `json:"site"`
	BuildID   string `json:"build_id"`
	ParamConf string `json:"param_conf"`
	Origin    string `json:"origin"`
	Referer   string `json:"referer"`
}

type CrawlConfig struct {
	MaxPages       int    `json:"max_pages"`
	PageDelayMinMs int    `json:"page_delay_min_ms"`
	PageDelayMaxMs int    `json:"page_delay_max_ms"`
	SaveEvery      int    `json:"save_every"`
	TestBrandLimit int    `json:"test_brand_limit"`
	Energy         string `json:"energy"`
}

type OutputConfig struct {
	Dir         string `json:"dir"`
	Prefix      string `json:"prefix"`
	Sqlite      string `json:"sqlite"`
	NatsURL     string `json:"nats_url"`
	NatsSubject string `json:"nats_subject"`
	HttpDumpDir string `json:"http_dump_dir"`
}

type Config struct {
	UserAgent         string  `json:"user_agent"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`

	Endpoints EndpointsConfig  `json:"endpoints"`
	Crawl     CrawlConfig      `json:"crawl"`
	Output    OutputConfig     `json:"output"`
	Telemetry telemetry.Config `json:"telemetry"`
}

func Default() Config {
	return Config{
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		TimeoutSeconds:    10,
		RequestsPerSecond: 2,
		Endpoints: EndpointsConfig{
			Brands:    "https://car.autohome.com.cn/javascript/NewSpecCompare.js",
			Site:      "https://www.autohome.com.cn",
			BuildID:   "nextweb-prod-c_1.0.160-p_1.50.0",
			ParamConf: "https://car-web-api.autohome.com.cn/car/param/getParamConf",
			Origin:    "https://www.autohome.com.cn",
			Referer:   "https://www.autohome.com.cn/",
		},
		Crawl: CrawlConfig{
			MaxPages:       10,
			PageDelayMinMs: 1000,
			PageDelayMaxMs: 3000,
			SaveEvery:      30,
			TestBrandLimit: 15,
			Energy:         "x",
		},
		Output: OutputConfig{
			Dir:         ".",
			Prefix:      "car_data",
			NatsSubject: "carcatalog.series",
		},
	}
}

// Load reads the configuration at `path`, fields left unset fall back to
// Default(). An empty path searches for DefaultName from the working
// directory upwards, a missing file is not an error.
func Load(path string) (Config, error) {
	var (
		cfg Config
		err error
	)
	if path == "" {
		cfg, err = configutil.ReadRecursively[Config](DefaultName)
	} else {
		cfg, err = configutil.ReadConfig[Config](path)
	}
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}

	err = mergo.Merge(&cfg, Default())
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// AutohomeOptions converts the configuration into client options.
func (c Config) AutohomeOptions() autohome.Options {
	return autohome.Options{
		BrandsURL:         c.Endpoints.Brands,
		SiteURL:           c.Endpoints.Site,
		BuildID:           c.Endpoints.BuildID,
		ParamConfURL:      c.Endpoints.ParamConf,
		Origin:            c.Endpoints.Origin,
		Referer:           c.Endpoints.Referer,
		UserAgent:         c.UserAgent,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.RequestsPerSecond,
		MaxPages:          c.Crawl.MaxPages,
		PageDelayMin:      time.Duration(c.Crawl.PageDelayMinMs) * time.Millisecond,
		PageDelayMax:      time.Duration(c.Crawl.PageDelayMaxMs) * time.Millisecond,
		Energy:            c.Crawl.Energy,
	}
}
