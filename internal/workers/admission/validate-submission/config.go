// internal/workers/admission/validate-submission/config.go
package validatesubmission

import (
	"time"

	"admission-portal/internal/wizard"
)

type Config struct {
	Timeout time.Duration
	Policy  wizard.Policy
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Policy:  wizard.DefaultPolicy(),
	}
}
