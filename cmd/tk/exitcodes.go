package main

// Exit codes for the CLI
const (
	ExitSuccess              = 0
	ExitGeneralError         = 1
	ExitProjectNotConfigured = 3
	ExitTaskNotFound         = 4
	ExitCorruptStore         = 5
	ExitInvalidInput         = 6
)
