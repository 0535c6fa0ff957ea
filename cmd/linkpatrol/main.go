// Package main provides the entry point for the linkpatrol CLI.
//
// linkpatrol crawls a website breadth-first, stays on the starting
// host, and reports every internal link that is broken.
//
// Usage:
//
//	linkpatrol scan <base-url>
//	linkpatrol history
//	linkpatrol compare <scan-id> <scan-id>
//
// See --help for all available options.
package main

// main is the entry point for linkpatrol.
func main() {
	Execute()
}
