// Package resolver turns a command's selection flags into the concrete list
// of lights it acts on.
//
// Resolution order:
//
//  1. --ip and --name together are rejected with ErrConflictingSelectors.
//  2. An explicit address list is parsed and returned as-is; the cache and
//     discovery are never consulted.
//  3. Otherwise the cache is loaded. A miss runs discovery and persists the
//     result. Discovery errors are returned unchanged.
//  4. A name filter is applied to the candidates; no match is ErrNoMatch.
//
// Cached targets are trusted without probing unless the resolver is built
// with WithVerify, in which case one failed TCP check invalidates the whole
// cache and discovery runs instead.
package resolver
