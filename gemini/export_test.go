package gemini

// BuildConfig exposes buildConfig for testing.
var BuildConfig = buildConfig
