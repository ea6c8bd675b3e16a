// Package config loads megaverse configuration.
//
// Values come from three layers, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. An optional YAML file
//  3. Environment variables (CANDIDATE_ID, MEGAVERSE_API_URL, MEGAVERSE_JOURNAL,
//     MEGAVERSE_MAX_ATTEMPTS, LOG_LEVEL, LOG_FORMAT)
//
// The result is validated with struct tags before use. A minimal file:
//
//	candidate_id: 0b1c...
//	api:
//	  base_url: https://challenge.crossmint.io/api
//	  timeout: 30s
//	retry:
//	  max_attempts: 5
//	  base_delay: 1s
//	journal:
//	  path: megaverse.db
package config
