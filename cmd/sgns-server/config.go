package main

import (
	"flag"
	"log"
	"os"
	"strconv"
)

// ServerConfig holds cmd/sgns-server's startup configuration.
type ServerConfig struct {
	Addr        string
	ModelFile   string
	EnvType     string
	BatchCount  int
	StopTime    float64
	Interval    float64
	LogLevel    string
}

// configResolver defines how one configuration value is resolved: flag,
// then environment variable, then default.
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

// loadServerConfig loads server configuration from CLI flags and
// environment variables, following the same resolver pattern the
// teacher's own config loader uses so adding a new option only means
// appending to resolvers.
func loadServerConfig() ServerConfig {
	cfg := ServerConfig{}

	resolvers := []configResolver{
		{
			flagName:    "addr",
			envVarName:  "SGNSSIM_ADDR",
			defaultVal:  ":8090",
			description: "HTTP listen address (e.g. :8090, 0.0.0.0:8090)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "model-file",
			envVarName:  "SGNSSIM_MODEL_FILE",
			defaultVal:  "",
			description: "path to a model config JSON file to load at startup (required)",
			setter:      func(c *ServerConfig, v string) { c.ModelFile = v },
		},
		{
			flagName:    "env-type",
			envVarName:  "SGNSSIM_ENV_TYPE",
			defaultVal:  "",
			description: "root compartment type name (default: the type with no parent)",
			setter:      func(c *ServerConfig, v string) { c.EnvType = v },
		},
		{
			flagName:    "batch-count",
			envVarName:  "SGNSSIM_BATCH_COUNT",
			defaultVal:  "1",
			description: "number of independent replicates per run",
			setter: func(c *ServerConfig, v string) {
				if n, err := strconv.Atoi(v); err == nil && n > 0 {
					c.BatchCount = n
				} else {
					log.Printf("invalid batch-count %q, using default 1", v)
					c.BatchCount = 1
				}
			},
		},
		{
			flagName:    "stop-time",
			envVarName:  "SGNSSIM_STOP_TIME",
			defaultVal:  "100",
			description: "simulated time each replicate runs until",
			setter: func(c *ServerConfig, v string) {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					c.StopTime = f
				} else {
					log.Printf("invalid stop-time %q, using default 100", v)
					c.StopTime = 100
				}
			},
		},
		{
			flagName:    "interval",
			envVarName:  "SGNSSIM_INTERVAL",
			defaultVal:  "1",
			description: "sampling interval, in simulated time",
			setter: func(c *ServerConfig, v string) {
				if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
					c.Interval = f
				} else {
					log.Printf("invalid interval %q, using default 1", v)
					c.Interval = 1
				}
			},
		},
		{
			flagName:    "log-level",
			envVarName:  "SGNSSIM_LOG_LEVEL",
			defaultVal:  "info",
			description: "log level: debug, info, warn, error",
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
	}

	flagVars := make(map[string]*string)
	for _, resolver := range resolvers {
		flagVars[resolver.flagName] = flag.String(resolver.flagName, "", resolver.description)
	}
	flag.Parse()

	for _, resolver := range resolvers {
		var value string
		switch {
		case *flagVars[resolver.flagName] != "":
			value = *flagVars[resolver.flagName]
		case os.Getenv(resolver.envVarName) != "":
			value = os.Getenv(resolver.envVarName)
		default:
			value = resolver.defaultVal
		}
		resolver.setter(&cfg, value)
	}

	return cfg
}
