// Package common holds helpers shared by several services.
//
// It detects the local actor (hostname/username) recorded with alias changes
// and other running relay processes that may write the same alias list.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
