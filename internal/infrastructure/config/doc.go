// Package config handles loading and validating homecontrol core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with HOMECONTROL_* environment variables
//   - Validation of required fields (all problems reported at once)
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (passwords, tokens, Hue application keys) should be set
//     via environment variables or a file with restricted permissions (0600)
//   - The JWT secret has no default and must be at least 32 characters
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, b := range cfg.Hue.Bridges {
//	    fmt.Println(b.Name, b.Address)
//	}
package config
