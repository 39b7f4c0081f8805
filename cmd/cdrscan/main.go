// Package main provides the entry point for the cdrscan CLI.
//
// cdrscan analyzes call detail records (CDRs) to map the social network
// around a subject phone line. It surfaces behavioral indicators,
// relationship patterns, and cross-subject links for investigations.
//
// Usage:
//
//	cdrscan analyze <subject-id>
//	cdrscan analyze <subject-id> <subject-id> ...
//
// See --help for all available options.
package main

// main is the entry point for cdrscan.
func main() {
	Execute()
}
