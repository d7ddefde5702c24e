// Package cache persists the last successfully discovered set of lights so
// later invocations can skip the mDNS browse.
//
// The cache is an optimisation, not a durability guarantee. Every Store
// method is best-effort: read failures look like a miss, write failures are
// logged at debug level and dropped. A corrupt, unreadable or empty cache is
// the same thing as no cache.
//
// Three backends exist:
//   - FileStore: a JSON file in the per-user cache directory, replaced atomically
//   - RedisStore: one Redis key holding the same JSON document, for sharing a
//     cache between machines
//   - Nop: never stores anything
//
// The document is a JSON array of {"name", "address", "port"} objects.
package cache
