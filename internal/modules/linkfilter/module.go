package linkfilter

import (
	"caylak-bot/internal/utils"
)

// Module flags messages containing any URL or invite link. It ships disabled
// and is only active when turned on through config.
type Module struct {
	enabled bool
}

func New(enabled bool) *Module {
	return &Module{enabled: enabled}
}

// Check returns whether the content violates the filter and the first
// normalized URL for the log entry.
func (m *Module) Check(content string) (bool, string) {
	if !m.enabled || content == "" {
		return false, ""
	}
	urls := utils.ExtractURLs(content)
	if len(urls) == 0 {
		return false, ""
	}
	normalized, _, err := utils.NormalizeURL(urls[0])
	if err != nil {
		normalized = urls[0]
	}
	return true, normalized
}
