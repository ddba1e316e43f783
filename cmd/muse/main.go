// Command muse is the adaptive recommendation engine's command-line
// front end: a thin cobra layer that parses flags and delegates its
// operations to internal/engine; list reads the catalogue directly.
package main

func main() {
	execute()
}
