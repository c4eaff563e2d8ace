package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	placeholders     = strings.NewReplacer("%s", "x", "%d", "0")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate paths
	if c.Paths.DataDir == "" {
		errors = append(errors, ValidationError{
			Field:   "paths.data_dir",
			Message: "data_dir is required",
		})
	}

	if c.Paths.SourceDataDir == "" {
		errors = append(errors, ValidationError{
			Field:   "paths.source_data_dir",
			Message: "source_data_dir is required",
		})
	}

	// Validate URL templates
	templates := []struct {
		field    string
		template string
		verbs    []string
	}{
		{"chamber.bio_url", c.Chamber.BioURL, []string{"%s", "%d"}},
		{"chamber.detail_url", c.Chamber.DetailURL, []string{"%d"}},
		{"chamber.photo_url", c.Chamber.PhotoURL, []string{"%s"}},
	}
	for _, tt := range templates {
		for _, verb := range tt.verbs {
			if strings.Count(tt.template, verb) != 1 {
				errors = append(errors, ValidationError{
					Field:   tt.field,
					Message: fmt.Sprintf("template must contain exactly one %s", verb),
				})
			}
		}
		if u, err := url.Parse(placeholders.Replace(tt.template)); err != nil || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   tt.field,
				Message: "template must be an absolute URL",
			})
		}
	}

	if c.Chamber.Legislature < 1 {
		errors = append(errors, ValidationError{
			Field:   "chamber.legislature",
			Message: "legislature must be positive",
		})
	}

	// Validate scraper config
	if c.Scraper.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "scraper.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Scraper.Retries < 0 {
		errors = append(errors, ValidationError{
			Field:   "scraper.retries",
			Message: "retries must not be negative",
		})
	}

	if c.Scraper.Timeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "scraper.timeout",
			Message: "timeout must not be negative",
		})
	}

	// Validate Database config
	if c.Database.URL != "" {
		if u, err := url.Parse(c.Database.URL); err != nil || u.Scheme == "" {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if !tableNamePattern.MatchString(c.Database.TableName) {
		errors = append(errors, ValidationError{
			Field:   "database.table_name",
			Message: fmt.Sprintf("invalid table name: %q", c.Database.TableName),
		})
	}

	return errors
}
