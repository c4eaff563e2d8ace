package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBioURL    = "http://www2.camara.gov.br/internet/deputados/biodeputado/index.html?nome=%s&leg=%d"
	DefaultDetailURL = "http://www.camara.gov.br/internet/deputado/Dep_Detalhe.asp?id=%d"
	DefaultPhotoURL  = "http://www.camara.gov.br/internet/deputado/fotos/%s.jpg"
)

type Config struct {
	Paths struct {
		DataDir       string `yaml:"data_dir"`
		SourceDataDir string `yaml:"source_data_dir"`
		IndexFile     string `yaml:"index_file"`
		Jurisdiction  string `yaml:"jurisdiction"`
	} `yaml:"paths"`

	Chamber struct {
		BioURL      string `yaml:"bio_url"`
		DetailURL   string `yaml:"detail_url"`
		PhotoURL    string `yaml:"photo_url"`
		Legislature int    `yaml:"legislature"`
	} `yaml:"chamber"`

	Scraper struct {
		RateLimit float64       `yaml:"rate_limit"`
		Timeout   time.Duration `yaml:"timeout"`
		Retries   int           `yaml:"retries"`
		UserAgent string        `yaml:"user_agent"`
	} `yaml:"scraper"`

	Database struct {
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
	} `yaml:"database"`

	Run struct {
		NoGet   bool `yaml:"noget"`
		NoParse bool `yaml:"noparse"`
	} `yaml:"run"`

	UI struct {
		Progress bool `yaml:"progress"`
	} `yaml:"ui"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/chamber/config.yaml"),
			"/etc/chamber/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

// OutputDir is where parsed records land:
// <data_dir>/<jurisdiction>/legislators.
func (c *Config) OutputDir() string {
	return filepath.Join(c.Paths.DataDir, filepath.FromSlash(c.Paths.Jurisdiction), "legislators")
}

func applyDefaults(config *Config) {
	if config.Paths.DataDir == "" {
		config.Paths.DataDir = "data"
	}
	if config.Paths.SourceDataDir == "" {
		config.Paths.SourceDataDir = "source_data"
	}
	if config.Paths.Jurisdiction == "" {
		config.Paths.Jurisdiction = "br/chamber/2007-2010"
	}
	if config.Paths.IndexFile == "" {
		config.Paths.IndexFile = filepath.Join(config.Paths.DataDir,
			filepath.FromSlash(config.Paths.Jurisdiction), "legislator_index.csv")
	}

	if config.Chamber.BioURL == "" {
		config.Chamber.BioURL = DefaultBioURL
	}
	if config.Chamber.DetailURL == "" {
		config.Chamber.DetailURL = DefaultDetailURL
	}
	if config.Chamber.PhotoURL == "" {
		config.Chamber.PhotoURL = DefaultPhotoURL
	}
	if config.Chamber.Legislature == 0 {
		config.Chamber.Legislature = 53
	}

	if config.Scraper.RateLimit == 0 {
		config.Scraper.RateLimit = 2.0
	}
	if config.Scraper.Timeout == 0 {
		config.Scraper.Timeout = 30 * time.Second
	}
	if config.Scraper.UserAgent == "" {
		config.Scraper.UserAgent = "Mozilla/5.0 (compatible; chamber-scraper/1.0)"
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "legislators"
	}
}

func mergeWithEnv(config *Config) {
	if dataDir := os.Getenv("CHAMBER_DATA_DIR"); dataDir != "" {
		config.Paths.DataDir = dataDir
	}
	if sourceDir := os.Getenv("CHAMBER_SOURCE_DATA_DIR"); sourceDir != "" {
		config.Paths.SourceDataDir = sourceDir
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
}

// SetDataDir moves the data root. An index file that was derived from the
// old root follows it; an explicitly configured one is kept.
func (c *Config) SetDataDir(dir string) {
	derived := filepath.Join(c.Paths.DataDir, filepath.FromSlash(c.Paths.Jurisdiction), "legislator_index.csv")
	if c.Paths.IndexFile == derived {
		c.Paths.IndexFile = ""
	}
	c.Paths.DataDir = dir
	applyDefaults(c)
}
