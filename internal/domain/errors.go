package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error raised while applying a patch.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnsupportedVersion
	KindRegexCompile
	KindInvalidConfig
	KindPathNotFound
	KindCoercion
	KindIO
	KindSharedIO
	KindTimeout
	KindCancelled
)

var kindNames = map[Kind]string{
	KindUnknown:            "unknown",
	KindUnsupportedVersion: "unsupported version",
	KindRegexCompile:       "regex compile",
	KindInvalidConfig:      "invalid config",
	KindPathNotFound:       "path not found",
	KindCoercion:           "coercion",
	KindIO:                 "io",
	KindSharedIO:           "shared io",
	KindTimeout:            "timeout",
	KindCancelled:          "cancelled",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Fatal reports whether errors of this kind stop the whole run.
// PathNotFound and Coercion affect one entry, IO affects one file.
func (k Kind) Fatal() bool {
	switch k {
	case KindUnsupportedVersion, KindRegexCompile, KindInvalidConfig,
		KindSharedIO, KindTimeout, KindCancelled:
		return true
	}
	return false
}

// Error is a classified error with the operation and location that raised it.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	} else if msg == "" {
		msg = e.Kind.String()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Path == "" && t.Err == nil
}

// Fatal reports whether the error stops the whole run.
func (e *Error) Fatal() bool { return e.Kind.Fatal() }

// Sentinels for errors.Is.
var (
	ErrUnsupportedVersion = &Error{Kind: KindUnsupportedVersion}
	ErrRegexCompile       = &Error{Kind: KindRegexCompile}
	ErrInvalidConfig      = &Error{Kind: KindInvalidConfig}
	ErrPathNotFound       = &Error{Kind: KindPathNotFound}
	ErrCoercion           = &Error{Kind: KindCoercion}
	ErrIO                 = &Error{Kind: KindIO}
	ErrSharedIO           = &Error{Kind: KindSharedIO}
	ErrTimeout            = &Error{Kind: KindTimeout}
	ErrCancelled          = &Error{Kind: KindCancelled}
)

// E builds an *Error.
func E(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Errorf builds an *Error with a formatted cause.
func Errorf(kind Kind, op, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsFatal reports whether err carries a fatal Kind.
func IsFatal(err error) bool {
	return KindOf(err).Fatal()
}
