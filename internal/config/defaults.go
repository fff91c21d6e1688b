package config

// DefaultOutputDir is where staged pages land when no output is configured.
const DefaultOutputDir = "./staged"

// DefaultLicenseURL is the published location the relative LICENSE link on
// the repository index page is rewritten to.
const DefaultLicenseURL = "https://github.com/artificial-intelligence-first/ssot/blob/main/LICENSE"

// DefaultPages returns the built-in staging table: the repository's
// root-level Markdown surfaces and the link rewrites that keep them working
// from inside the documentation tree.
func DefaultPages() []Page {
	return defaultPagesWithLicense(DefaultLicenseURL)
}

func defaultPagesWithLicense(licenseURL string) []Page {
	return []Page{
		{
			Destination: "index.md",
			Source:      "README.md",
			Rewrites: []Rewrite{
				{From: "./docs/", To: ""},
				{From: "./_templates/", To: "_templates/"},
				{From: "./LICENSE", To: licenseURL},
			},
		},
		{
			Destination: "AGENTS.md",
			Source:      "AGENTS.md",
			Rewrites: []Rewrite{
				{From: "./docs/", To: ""},
			},
		},
		{Destination: "_templates/TOPIC_TEMPLATE.md", Source: "_templates/TOPIC_TEMPLATE.md"},
		{Destination: "_templates/SECTION_TEMPLATE.md", Source: "_templates/SECTION_TEMPLATE.md"},
		{Destination: "_templates/FRONT_MATTER.md", Source: "_templates/FRONT_MATTER.md"},
	}
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
