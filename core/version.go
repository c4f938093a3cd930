package core

// Name and Version identify the core to frontends and the CLI.
const (
	Name    = "goc64"
	Version = "0.1.0"
)
