package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCaseID    = errors.New("case id may only contain lowercase letters, digits and underscores")
	ErrDuplicateCaseID  = errors.New("case study with this id already exists")
	ErrEmptyInput       = errors.New("input cannot be empty")
	ErrCaseNotFound     = errors.New("case study not found")
	ErrBackupNotFound   = errors.New("backup not found")
	ErrUnknownAction    = errors.New("unknown action")
	ErrUnknownCallback  = errors.New("unknown callback")
	ErrExpiredCallback  = errors.New("button has expired")
	ErrCheckInProgress  = errors.New("a visit check is already running")
	ErrMonitorDisabled  = errors.New("analytics monitor is disabled")
	ErrInvalidVersion   = errors.New("version must be a positive number")
	ErrNoWorkflowToSkip = errors.New("nothing to skip")
)

// UpstreamError wraps a failure of an external service
type UpstreamError struct {
	Service string
	Op      string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Upstream wraps err as an UpstreamError, nil stays nil
func Upstream(service, op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Service: service, Op: op, Err: err}
}

// TransportError wraps a chat platform failure
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("telegram %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ErrorKind groups errors by how they are presented to the user
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindUserInput
	KindNotFound
	KindTransport
	KindUpstream
	KindRouting
)

// Classify maps err onto an ErrorKind
func Classify(err error) ErrorKind {
	var upstream *UpstreamError
	var transport *TransportError
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInvalidCaseID), errors.Is(err, ErrDuplicateCaseID),
		errors.Is(err, ErrEmptyInput), errors.Is(err, ErrInvalidVersion), errors.Is(err, ErrNoWorkflowToSkip):
		return KindUserInput
	case errors.Is(err, ErrCaseNotFound), errors.Is(err, ErrBackupNotFound), errors.Is(err, ErrExpiredCallback):
		return KindNotFound
	case errors.Is(err, ErrUnknownAction), errors.Is(err, ErrUnknownCallback):
		return KindRouting
	case errors.As(err, &transport):
		return KindTransport
	case errors.As(err, &upstream):
		return KindUpstream
	}
	return KindInternal
}
