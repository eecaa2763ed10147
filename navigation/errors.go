package navigation

import (
	bettererrors "github.com/xtuc/better-errors"
)

// InvalidActionError reports an action whose shape does not match the
// environment. It is raised before any state mutation, so a failed
// Step leaves the episode untouched.
type InvalidActionError struct {
	chain *bettererrors.Chain
}

func (e InvalidActionError) Error() string {
	return e.chain.Error()
}

func NewInvalidActionError(message string) InvalidActionError {
	return InvalidActionError{
		chain: bettererrors.New(message),
	}
}

func (e InvalidActionError) SetContext(key string, value string) InvalidActionError {
	e.chain = e.chain.SetContext(key, value)
	return e
}

// Chain exposes the underlying error chain for pretty printers.
func (e InvalidActionError) Chain() *bettererrors.Chain {
	return e.chain
}

func IsInvalidActionError(err error) bool {
	_, ok := err.(InvalidActionError)
	return ok
}

// ConfigurationError reports out-of-range or contradictory limits,
// detected at construction or when reset cannot place robots inside
// the configured bounds.
type ConfigurationError struct {
	chain *bettererrors.Chain
}

func (e ConfigurationError) Error() string {
	return e.chain.Error()
}

func NewConfigurationError(message string) ConfigurationError {
	return ConfigurationError{
		chain: bettererrors.New(message),
	}
}

func (e ConfigurationError) SetContext(key string, value string) ConfigurationError {
	e.chain = e.chain.SetContext(key, value)
	return e
}

func (e ConfigurationError) With(err error) ConfigurationError {
	e.chain = e.chain.With(err)
	return e
}

// Chain exposes the underlying error chain for pretty printers.
func (e ConfigurationError) Chain() *bettererrors.Chain {
	return e.chain
}

func IsConfigurationError(err error) bool {
	_, ok := err.(ConfigurationError)
	return ok
}
