package tls

import "github.com/cockroachdb/errors"

var (
	// ErrNoTemplate indicates thread-local access before InstallTemplate.
	ErrNoTemplate = errors.New("tls: no template installed")

	// ErrTemplateInstalled indicates a second InstallTemplate call.
	ErrTemplateInstalled = errors.New("tls: template already installed")

	// ErrSlotRange indicates an offset or width outside the template.
	ErrSlotRange = errors.New("tls: slot out of range")

	// ErrNoThread indicates a thread with no live block.
	ErrNoThread = errors.New("tls: no block for thread")

	// ErrBadTemplate indicates an invalid template alignment.
	ErrBadTemplate = errors.New("tls: bad template")
)
