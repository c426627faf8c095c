package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

const sampleConfig = `# bulkdml configuration
dialect: mysql
default_environment: development
timeout: 30
timestamp_layout: "2006-01-02 15:04:05"

databases:
  development:
    driver: mysql
    connection: "${DATABASE_URL}"

update:
  key: id
  updated_at_column: updated_at
  timestamps: true
  bind_parameters: false
  chunk_size: 0

insert:
  created_at_column: created_at
  updated_at_column: updated_at
  timestamps: true
  chunk_size: 0
`

// InitCmd represents the init command
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(ctx *Context) error {
	if _, err := os.Stat(ctx.Config); err == nil && !i.Force {
		return fmt.Errorf("%w: %s", ErrConfigExists, ctx.Config)
	}

	if err := os.WriteFile(ctx.Config, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ctx.Config, err)
	}

	if !ctx.Quiet {
		color.Green("Created %s", ctx.Config)
		fmt.Println("\nNext steps:")
		fmt.Println("1. Set DATABASE_URL in your environment or a .env file")
		fmt.Println("2. Run 'bulkdml update rows.yaml --table users --dry-run' to preview a batch")
	}

	return nil
}
