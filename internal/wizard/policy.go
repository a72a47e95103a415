package wizard

import (
	"strings"
	"time"

	"admission-portal/internal/common/config"
)

// Policy carries the tunable form rules.
type Policy struct {
	EssayMinWords        int
	EssayMaxWords        int
	MinimumAge           int
	MaxUploadBytes       int64
	ImageContentTypes    []string
	DocumentContentTypes []string
	ApplicationIDPrefix  string
	AutosaveInterval     time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		EssayMinWords:        300,
		EssayMaxWords:        500,
		MinimumAge:           16,
		MaxUploadBytes:       5 * 1024 * 1024,
		ImageContentTypes:    []string{"image/jpeg", "image/jpg", "image/png"},
		DocumentContentTypes: []string{"application/pdf", "image/jpeg", "image/jpg", "image/png"},
		ApplicationIDPrefix:  "MUST-APP",
		AutosaveInterval:     30 * time.Second,
	}
}

// PolicyFromConfig fills a Policy from the wizard section, keeping defaults
// for anything left unset.
func PolicyFromConfig(cfg config.WizardConfig) Policy {
	p := DefaultPolicy()
	if cfg.EssayMinWords > 0 {
		p.EssayMinWords = cfg.EssayMinWords
	}
	if cfg.EssayMaxWords > 0 {
		p.EssayMaxWords = cfg.EssayMaxWords
	}
	if cfg.MinimumAge > 0 {
		p.MinimumAge = cfg.MinimumAge
	}
	if cfg.MaxUploadBytes > 0 {
		p.MaxUploadBytes = cfg.MaxUploadBytes
	}
	if len(cfg.ImageContentTypes) > 0 {
		p.ImageContentTypes = cfg.ImageContentTypes
	}
	if len(cfg.DocumentTypes) > 0 {
		p.DocumentContentTypes = cfg.DocumentTypes
	}
	if cfg.ApplicationIDPrefix != "" {
		p.ApplicationIDPrefix = cfg.ApplicationIDPrefix
	}
	if cfg.AutosaveInterval > 0 {
		p.AutosaveInterval = config.GetDuration(cfg.AutosaveInterval)
	}
	return p
}

func acceptsType(accepted []string, contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, a := range accepted {
		if strings.EqualFold(a, ct) {
			return true
		}
	}
	return false
}
