package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tempura/tempura/internal/config"
	"github.com/tempura/tempura/internal/domain"
	"github.com/tempura/tempura/internal/store"
)

// invalidInputError marks user input the CLI could not interpret.
type invalidInputError struct {
	msg string
}

func (e *invalidInputError) Error() string {
	return e.msg
}

// getStore opens the task store at the location resolved from config
func getStore() (*store.Store, error) {
	cfg, err := config.ResolveConfig()
	if err != nil {
		return nil, err
	}
	return store.New(cfg.TasksFile, store.WithLogger(newLogger())), nil
}

// newLogger builds the store logger: a development zap logger on stderr
// when --verbose is set, otherwise silent.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// parseTaskID parses a task id argument
func parseTaskID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, &invalidInputError{msg: fmt.Sprintf("invalid task id %q: expected an integer", arg)}
	}
	return id, nil
}

// parseSetFlags parses repeated --set key=value flags into an update map.
// Values that parse as JSON are stored typed; anything else is a string.
func parseSetFlags(pairs []string) (map[string]any, error) {
	updates := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, &invalidInputError{msg: fmt.Sprintf("invalid --set %q: expected key=value", pair)}
		}
		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			parsed = value
		}
		updates[key] = parsed
	}
	return updates, nil
}

// mapErrorToExitCode maps an error to the appropriate exit code
func mapErrorToExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ExitTaskNotFound
	case errors.Is(err, domain.ErrCorrupt):
		return ExitCorruptStore
	case errors.Is(err, domain.ErrMissingField):
		return ExitInvalidInput
	}

	var inputErr *invalidInputError
	if errors.As(err, &inputErr) {
		return ExitInvalidInput
	}

	if isConfigNotFoundError(err) {
		return ExitProjectNotConfigured
	}

	return ExitGeneralError
}

// isConfigNotFoundError checks if the error is a config not found error
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "No tempura.toml found")
}

// handleError handles an error by printing it and exiting with the appropriate code
func handleError(err error) {
	if err == nil {
		return
	}

	printError(os.Stderr, err, jsonOutput)
	os.Exit(mapErrorToExitCode(err))
}
