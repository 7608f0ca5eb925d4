package cli

const (
	FlagHome   = "home"
	FlagOutput = "output"
	FlagName   = "name"
	FlagRecord = "record"
	FlagBias   = "bias"
	FlagText   = "text"
	FlagMedium = "medium"
)

const (
	EnvHome = "BOOTSECT_HOME"

	DefaultHome = "~/.bootsect"
)
