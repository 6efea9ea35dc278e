package cli

var (
	OverrideMode   = overrideMode
	RunInteractive = runInteractive
	PrintNotify    = printNotify
)
