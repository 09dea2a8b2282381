package gemini

var (
	Open        = open
	BuildConfig = buildConfig
)
