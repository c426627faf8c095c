package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
}

// CLI represents the command-line interface
var CLI struct {
	Config  string     `help:"Configuration file path" default:"bulkdml.yaml"`
	Verbose bool       `help:"Enable verbose output" short:"v"`
	Quiet   bool       `help:"Suppress output" short:"q"`
	Update  UpdateCmd  `cmd:"" help:"Update many rows with a single CASE statement"`
	Insert  InsertCmd  `cmd:"" help:"Insert many rows with a multi-row INSERT"`
	Init    InitCmd    `cmd:"" help:"Write a sample configuration file"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run() error {
	fmt.Println("bulkdml v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("bulkdml"),
		kong.Description("Batch INSERT and CASE-based UPDATE for relational tables"),
	)

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
