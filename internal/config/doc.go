// Package config provides configuration structures and utilities for wordcrawl.
// It defines the search parameters, HTTP settings, report preferences and the
// optional per-site settings file.
package config
