// Package unit models the work items a scan processes.
//
// A Unit is one source file or one source folder treated as an aggregate.
// Units are rediscovered on every run and never persisted; their canonical
// key decides the output directory under the library's destination subtree
// and the names of every artifact written there.
package unit
