package config

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Validate checks the configuration for mistakes a run would otherwise only
// hit midway through.
func (c *Config) Validate() error {
	if c.Output.Directory == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if len(c.Pages) == 0 {
		return fmt.Errorf("at least one page must be configured")
	}

	seen := make(map[string]bool, len(c.Pages))
	for i, page := range c.Pages {
		if page.Destination == "" {
			return fmt.Errorf("page %d: destination cannot be empty", i)
		}
		if page.Source == "" {
			return fmt.Errorf("page %s: source cannot be empty", page.Destination)
		}
		clean := path.Clean(page.Destination)
		if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
			return fmt.Errorf("page %s: destination must stay inside the output tree", page.Destination)
		}
		if seen[clean] {
			return fmt.Errorf("duplicate destination: %s", page.Destination)
		}
		seen[clean] = true

		for j, rule := range page.Rewrites {
			if rule.From == "" {
				return fmt.Errorf("page %s: rewrite %d has an empty from", page.Destination, j)
			}
		}
	}

	for name, value := range map[string]string{
		"check.timeout":  c.Check.Timeout,
		"watch.debounce": c.Watch.Debounce,
		"watch.interval": c.Watch.Interval,
	} {
		if value == "" || value == "0" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	if c.Events.NATSURL != "" && c.Events.Subject == "" {
		return fmt.Errorf("events.subject cannot be empty when events.nats_url is set")
	}
	return nil
}
