// Package config loads the panelclean configuration.
//
// # Configuration Sources
//
// Configuration is built from the following sources, later ones overriding
// earlier ones:
//
//	1. Default values
//	2. A YAML file (--config, FIN427_CONFIG, ./panelclean.yaml or
//	   ./configs/panelclean.yaml)
//	3. Environment variables
//
// Command line flags are applied on top by the panelclean commands, after
// which the result is validated again.
//
// # Environment Variables
//
// All environment variables follow the pattern FIN427_<SECTION>_<KEY>:
//
//	FIN427_PROCESSING_CHUNK_SIZE=300000
//	FIN427_PROCESSING_TAIL_POLICY=strict
//	FIN427_PROCESSING_PASSTHROUGH=TICKER,COMNAM
//	FIN427_LOGGING_LEVEL=debug
//	FIN427_OBSERVABILITY_METRICS_FILE=metrics/panelclean.prom
//
// # Validation
//
// Load validates the struct tags with go-playground/validator and then
// checks that no passthrough column repeats the entity, date or value
// column. Every failure is an AppError of type CONFIG.
//
// # Usage
//
//	cfg, err := config.Load(configFile)
//	if err != nil {
//	    return err
//	}
//	statsDir := cfg.StatsDir()
package config
