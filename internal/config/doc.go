// Package config provides configuration structures and utilities for grepscan.
// It defines the options for selecting and tuning detectors, ingesting
// response dumps, and report generation preferences.
package config
