// Package cmd implements the scrip subcommands.
//
// Every command reads its sources through [ReadSources], parses them with
// the options installed by [WithOptions] and writes to the streams
// installed by [WithStreams], so commands run the same way under the CLI
// and under test.
package cmd

var (
	// CacheIdentifier is the kong variable holding the cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable holding the configuration file
	// path.
	ConfigIdentifier = "config"
)
