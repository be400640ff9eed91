// Package config handles configuration loading for faultline.
//
// Configuration comes from a JSON file (.faultline.config.json and
// friends), merged over defaults, with CLI flags taking final
// precedence.
package config
