// Package types defines the backlog entities (WorkItem, Sprint, Backlog),
// their closed enumerations, configuration, and the standard error values
// shared by the planner, the stores, and the CLI.
package types
