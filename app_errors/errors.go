package app_errors

import "fmt"

// EnvironmentError reports that the command was started outside a usable git work tree.
type EnvironmentError struct {
	Msg string
	Err error
}

func (e *EnvironmentError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *EnvironmentError) Unwrap() error {
	return e.Err
}

// GitCommandError carries the stderr of a failed git invocation verbatim.
type GitCommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *GitCommandError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("git %v failed: %v", e.Args, e.Err)
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

// GenerationError is returned when the completion service produced no usable message.
type GenerationError struct {
	Msg string
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
