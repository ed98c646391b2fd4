package config

import (
	"fmt"
	"os"
)

const starterConfig = `# sitegen site configuration
content_dir: content
layouts_dir: layouts
output_dir: site

rules:
  - pattern: "/*.md"
    filters: [markdown]
    layout: default.tmpl
  - pattern: "/**/*.md"
    filters: [markdown]
    layout: default.tmpl
  - pattern: "/**/*"

# journal:
#   path: .sitegen/journal.db
# events:
#   nats_url: nats://127.0.0.1:4222
#   subject: sitegen.events
# metrics:
#   listen: 127.0.0.1:9464
`

// Init writes a starter configuration file. It refuses to overwrite an
// existing file unless force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}
	return os.WriteFile(path, []byte(starterConfig), 0o644)
}
