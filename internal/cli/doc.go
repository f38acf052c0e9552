// Package cli wires together the Cobra command tree for the revq binary.
//
// The bare root command launches the interactive review interface; the
// config and daemon subcommands manage configuration and the background
// pull request watcher.
package cli
