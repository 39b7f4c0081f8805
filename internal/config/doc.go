// Package config provides configuration structures and utilities for cdrscan.
// It defines the main configuration options for loading call detail records,
// ego-network traversal settings, and report generation preferences.
package config
