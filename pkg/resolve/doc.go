// Package resolve provides the generic resolvers devshell composes into a
// chain: fixed tables, registry name aliasing and unpacked install trees.
// Nix-backed resolvers live in package nix.
package resolve
