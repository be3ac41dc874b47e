// Package config loads runtime configuration for the contacts CLI.
//
// Sources & precedence (later wins)
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment: variables from the process, then from a .env file in the
//     working directory (process values win). Names are CONTACTS_* plus
//     GOOGLE_MAPS_API_KEY.
//  4. Command-line flags.
//
// Supported flags
//
//	-s string   state store backend: memory, file, sqlite, postgres, redis, s3
//	-f string   path of the state file (file backend)
//	-d string   database DSN (sqlite path or postgres URL)
//	-r string   redis address host:port
//	-k string   key the state document is stored under
//	-t duration request timeout for address and geocode lookups
//	-l string   log level: debug, info, warn, error
//	-m string   address to serve Prometheus metrics on (empty disables)
//
// # JSON schema
//
//	{
//	  "store": "sqlite",
//	  "dsn": "/home/me/.config/contactkeeper/contacts.db",
//	  "request_timeout": "5s",
//	  "cep_debounce": "300ms",
//	  "geocode_rate": 10,
//	  "log_level": "debug"
//	}
package config
