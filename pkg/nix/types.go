// types.go
package nix

import nixpath "zombiezen.com/go/nix"

// Package represents an entry in the JSON attribute index
type Package struct {
	Attribute   string `json:"Attribute"`
	NameVersion string `json:"NameVersion"`
	StorePath   string `json:"StorePath"`
}

// VerifyResult reports the outcome of comparing a local store path against
// the binary cache.
type VerifyResult struct {
	StorePath string
	Expected  nixpath.Hash // NarHash advertised by the cache
	Actual    nixpath.Hash // hash of the local NAR serialization
	NarSize   int64
}

// objectName splits a store object name such as "libX11-1.8.7-dev" into its
// package name, version and output.
type objectName struct {
	pname   string
	version string
	output  string
}
