// Package config handles YAML configuration loading with environment
// variable substitution.
//
// Configuration files support ${VAR} syntax for secrets such as the delivery
// API key. The document is loaded once at process start and treated as
// immutable for the run's duration.
package config
