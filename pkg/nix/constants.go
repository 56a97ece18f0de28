// constants.go
package nix

import "time"

const (
	// DefaultCacheURL is the official Nix binary cache
	DefaultCacheURL = "https://cache.nixos.org"

	// DefaultStoreDir is where Nix keeps store objects
	DefaultStoreDir = "/nix/store"

	// DefaultFlake is the flake whose attributes package names refer to
	DefaultFlake = "nixpkgs"

	// DefaultTimeout bounds binary cache requests
	DefaultTimeout = 30 * time.Second

	// determinateProfileBin is where Determinate Nix installs its binaries,
	// outside PATH by default.
	determinateProfileBin = "/nix/var/nix/profiles/default/bin"
)

// outputRank orders package outputs when more than one carries a library
// directory; lower is preferred.
var outputRank = map[string]int{
	"lib": 0,
	"out": 1,
}

// knownOutputs are the output suffixes store object names may carry.
var knownOutputs = map[string]bool{
	"bin":    true,
	"dev":    true,
	"devdoc": true,
	"doc":    true,
	"debug":  true,
	"info":   true,
	"lib":    true,
	"man":    true,
	"out":    true,
	"static": true,
}
