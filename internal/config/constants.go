package config

import "time"

// Base application details
const AppName = "strata"
const DefaultConfigFileName = "config.toml" // Main config file
const DefaultLogFileName = "strata.log"

// Reconciliation: hunk coarsening kicks in above HunkThreshold diff segments and
// merges changes separated by at most MergeGap unchanged runes.
const DefaultHunkThreshold = 10
const DefaultMergeGap = 10

// Placeholder is the text stored in the base layer for a freshly inserted anchor.
const Placeholder = "\x00"

// History
const DefaultMaxHistory = 100
const DefaultDebounce = time.Second

// Transform
const DefaultModel = "gpt-4o-mini"
const DefaultAPIKeyEnv = "OPENAI_API_KEY"
