// Package main provides the entry point for the appstrap CLI.
//
// appstrap provisions a self-hosted instance of the Plexus collaboration
// platform: it clones the platform repository, installs packages, runs the
// platform's setup hook, brings an ephemeral database stack up for schema
// initialization and migration, and tears the stack down again.
//
// Usage:
//
//	appstrap install <instance>
//	appstrap install --v1 <instance>
//	appstrap install --offline --archive platform.tar.gz <instance>
//
// See --help for all available options.
package main

// main is the entry point for appstrap.
func main() {
	Execute()
}
