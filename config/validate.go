package config

import (
	"fmt"
	"strings"
)

// Validate checks the fields an engine cannot run without. It is separate
// from Load so generated defaults can be inspected before being rejected.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Owner) == "" {
		return fmt.Errorf("config: Owner is required")
	}
	if strings.TrimSpace(c.Vault) == "" {
		return fmt.Errorf("config: Vault is required")
	}
	for _, principal := range []string{c.Owner, c.DisputeOracle} {
		if principal != "" && principal == c.Vault {
			return fmt.Errorf("config: Vault must not be a principal (%s)", principal)
		}
	}
	if c.TimeoutDelay == 0 {
		return fmt.Errorf("config: TimeoutDelay must be positive")
	}
	return nil
}
