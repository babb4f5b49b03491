// Package alias manages user-defined names for relay module serial numbers.
//
// All bindings live in one persisted string value, NAME=SN,NAME=SN,..., read and
// rewritten in full by every operation. There is no locking: two processes editing
// aliases at the same time can lose one of the updates.
package alias
