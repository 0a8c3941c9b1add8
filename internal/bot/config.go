package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Long-polling timeout in seconds
	UpdateTimeout int
	// Log every request made to the Bot API
	Debug bool
	// Reminder times offered as buttons; any other time can be set with /time
	TimeChoices []string
	// How long in-flight updates may take to finish on shutdown
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		UpdateTimeout:   60,
		TimeChoices:     []string{"06:00", "08:00", "12:00", "15:00", "18:00", "20:00"},
		ShutdownTimeout: 10 * time.Second,
	}
}
