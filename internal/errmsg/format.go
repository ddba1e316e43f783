// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Catalogue operations
	OpCatalogueInsert     Op = "insert song into catalogue"
	OpCatalogueLookup     Op = "look up song"
	OpCatalogueFuzzy      Op = "find seed song"
	OpCatalogueBump       Op = "update song counters"
	OpCatalogueLove       Op = "update loved flag"
	OpCatalogueTransition Op = "record transition"
	OpCatalogueRandom     Op = "pick random song"
	OpCatalogueList       Op = "list catalogue"
	OpCatalogueScan       Op = "scan music library"
	OpCatalogueUpdate     Op = "update music library"

	// Path mapping operations
	OpPathToPlayer     Op = "translate path for player"
	OpPathToAbsolute   Op = "translate path from player"
	OpPathDiscoverRoot Op = "discover music root"

	// Queue operations
	OpQueueBuildCurrent Op = "build current queue"
	OpQueueBuildThread  Op = "build thread queue"
	OpQueueBuildStream  Op = "build stream queue"
	OpQueueWalk         Op = "walk connection graph"

	// Player operations
	OpPlayerLoad   Op = "load queue into player"
	OpPlayerStatus Op = "read player status"
	OpPlayerNext   Op = "advance to next track"
	OpPlayerIdle   Op = "wait for player event"

	// Tracker operations
	OpTrackerFinalize Op = "finalize playback episode"
	OpTrackerPoll     Op = "poll player status"

	// Supervisor operations
	OpSupervisorStart  Op = "start daemon"
	OpSupervisorStop   Op = "stop daemon"
	OpSupervisorStatus Op = "check daemon status"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
