// Package hash provides helpers for hashing and verifying sensitive
// identifiers.
//
// Typical usage is keeping account numbers out of storage: persist only the
// keyed hash, then verify client input by hashing it again and comparing.
package hash
