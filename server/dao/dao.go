// Package dao provides data access objects for use in the scriptlint server.
package dao

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"

	"github.com/dekarrin/scriptlint/internal/diag"
)

var (
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrNotFound            = errors.New("the requested resource was not found")
	ErrDecodingFailure     = errors.New("field could not be decoded from DB storage format to model format")
)

// Store holds all the repositories.
type Store interface {
	Users() UserRepository
	Runs() RunRepository
	Close() error
}

// Role determines what actions a user is allowed to perform against the
// server.
type Role int

const (
	Guest Role = iota
	Unverified
	Normal
	Admin
)

func (r Role) String() string {
	switch r {
	case Guest:
		return "guest"
	case Unverified:
		return "unverified"
	case Normal:
		return "normal"
	case Admin:
		return "admin"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole converts a string from DB storage format into a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "guest":
		return Guest, nil
	case "unverified":
		return Unverified, nil
	case "normal":
		return Normal, nil
	case "admin":
		return Admin, nil
	default:
		return Guest, fmt.Errorf("must be one of 'guest', 'unverified', 'normal', or 'admin': %q", s)
	}
}

type UserRepository interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) (User, error)
	Close() error
}

type User struct {
	ID             uuid.UUID
	Username       string
	Password       string // bcrypt hash, never the plaintext
	Email          *mail.Address
	Role           Role
	Created        time.Time
	LastLogoutTime time.Time
}

type RunRepository interface {
	Create(ctx context.Context, run Run) (Run, error)
	GetByID(ctx context.Context, id uuid.UUID) (Run, error)

	// GetAllByUser retrieves all Runs recorded for the given user, most
	// recent first.
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]Run, error)
	GetAll(ctx context.Context) ([]Run, error)
	Delete(ctx context.Context, id uuid.UUID) (Run, error)
	Close() error
}

// Run is one recorded lint invocation: who asked for it, what the source was
// called, and every diagnostic the pipeline produced.
type Run struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	SourceName string
	Created    time.Time
	Diags      DiagList
}

// DiagList is a []diag.Diag that knows how to encode itself to the binary
// storage format used for persisted runs.
type DiagList []diag.Diag

// MarshalBinary converts dl into its binary storage format.
func (dl DiagList) MarshalBinary() ([]byte, error) {
	enc := rezi.EncInt(len(dl))
	for _, d := range dl {
		enc = append(enc, rezi.EncInt(d.Caret.Line)...)
		enc = append(enc, rezi.EncInt(d.Caret.Col)...)
		enc = append(enc, rezi.EncInt(d.Range.Beg.Line)...)
		enc = append(enc, rezi.EncInt(d.Range.Beg.Col)...)
		enc = append(enc, rezi.EncInt(d.Range.End.Line)...)
		enc = append(enc, rezi.EncInt(d.Range.End.Col)...)
		enc = append(enc, rezi.EncInt(int(d.Severity))...)
		enc = append(enc, rezi.EncInt(int(d.ID))...)
		enc = append(enc, rezi.EncString(d.Message)...)
	}
	return enc, nil
}

// UnmarshalBinary replaces dl's contents with the diagnostics decoded from
// data, which must have been produced by MarshalBinary.
func (dl *DiagList) UnmarshalBinary(data []byte) error {
	decInt := func(target *int) error {
		v, n, err := rezi.DecInt(data)
		if err != nil {
			return err
		}
		data = data[n:]
		*target = v
		return nil
	}

	var count int
	if err := decInt(&count); err != nil {
		return fmt.Errorf("diag count: %w", err)
	}

	decoded := make(DiagList, count)
	for i := 0; i < count; i++ {
		d := diag.Diag{}
		ints := []*int{
			&d.Caret.Line, &d.Caret.Col,
			&d.Range.Beg.Line, &d.Range.Beg.Col,
			&d.Range.End.Line, &d.Range.End.Col,
		}
		for _, target := range ints {
			if err := decInt(target); err != nil {
				return fmt.Errorf("diag %d: %w", i, err)
			}
		}
		var sev, id int
		if err := decInt(&sev); err != nil {
			return fmt.Errorf("diag %d severity: %w", i, err)
		}
		if err := decInt(&id); err != nil {
			return fmt.Errorf("diag %d message id: %w", i, err)
		}
		d.Severity = diag.Severity(sev)
		d.ID = diag.ID(id)

		msg, n, err := rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("diag %d message: %w", i, err)
		}
		data = data[n:]
		d.Message = msg

		decoded[i] = d
	}

	*dl = decoded
	return nil
}
