// Package config loads and validates flowrunner configuration from JSON
// files with environment variable overrides.
//
// Configuration is layered: defaults first, then each file layer in the
// order added, then environment overrides. Later layers win field by field.
//
//	loader := config.NewLoader()
//	loader.EnableValidation(true)
//	cfg, err := loader.LoadFile("flowrunner.json")
//
// A minimal config file:
//
//	{
//	  "logging": {"level": "debug", "format": "json"},
//	  "metrics": {"enabled": true, "port": 9090},
//	  "monitor": {"enabled": true, "port": 8090, "interval": "500ms"},
//	  "nats": {"enabled": true, "urls": ["nats://localhost:4222"]},
//	  "graph": {"clock_interval": "1s", "threshold": 10}
//	}
//
// Duration fields accept Go duration strings ("500ms", "2s") or raw
// nanosecond numbers.
//
// Environment overrides use the FLOWRUNNER_ prefix, for example
// FLOWRUNNER_LOG_LEVEL=debug or FLOWRUNNER_NATS_URLS=nats://a:4222,nats://b:4222.
package config
