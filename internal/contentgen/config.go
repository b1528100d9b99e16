package contentgen

// Config controls generation requests.
type Config struct {
	// MaxTokens is the token budget per response. Zero leaves it to the
	// provider.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0). Zero leaves it
	// to the provider.
	Temperature float64

	// ImageAspectRatio and ImageMIMEType shape illustrations.
	ImageAspectRatio string
	ImageMIMEType    string
}

// DefaultConfig returns the generation defaults.
func DefaultConfig() Config {
	return Config{
		ImageAspectRatio: "1:1",
		ImageMIMEType:    "image/jpeg",
	}
}
