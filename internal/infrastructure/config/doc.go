// Package config handles loading and validating challenge tracker configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - The challenge credentials are handed to participants in task hints;
//     they are not secrets
//   - The admin token and broker/InfluxDB credentials should be set via
//     environment variables
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Port)
package config
