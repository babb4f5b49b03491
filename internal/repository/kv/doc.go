// Package kv implements persistence for small named string values such as the alias list.
//
// Store is the interface the alias service depends on. FileStore keeps every value in a
// single protojson document written atomically; BoltStore keeps them in a bbolt bucket.
package kv
