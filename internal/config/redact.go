package config

const redactedValue = "<redacted>"

// Redacted returns a copy of c with every credential that is set replaced by
// a placeholder, for display.
func (c Config) Redacted() Config {
	for _, secret := range []*string{
		&c.LLM.APIKey,
		&c.Speech.APIKey,
		&c.Transcription.HFToken,
		&c.Media.UnsplashAccessKey,
		&c.Media.GoogleAPIKey,
		&c.Media.TenorAPIKey,
		&c.Media.TenorClientKey,
		&c.Notifications.NtfyTopic,
	} {
		if *secret != "" {
			*secret = redactedValue
		}
	}
	return c
}
