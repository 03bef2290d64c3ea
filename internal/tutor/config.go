package tutor

// Config holds generation settings for the three request kinds.
type Config struct {
	// MaxTokens caps every response. Zero leaves the provider default.
	MaxTokens int

	StudyTemperature     float64
	TranslateTemperature float64
	QATemperature        float64
}

// DefaultConfig returns the tuned defaults: creative study content, literal
// translation, focused answers.
func DefaultConfig() Config {
	return Config{
		StudyTemperature:     0.7,
		TranslateTemperature: 0.3,
		QATemperature:        0.4,
	}
}
