// Package driving defines the interfaces through which the outside
// world drives the core (primary ports). CLI and TUI adapters depend on
// these interfaces; core services implement them.
package driving
