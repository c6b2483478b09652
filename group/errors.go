package group

import "errors"

var (
	// ErrInvalidDiscriminant is returned for discriminants that are not
	// negative and ≡ 1 (mod 4), and for forms whose coefficients do not
	// lie on the group's discriminant.
	ErrInvalidDiscriminant = errors.New("group: invalid discriminant")

	// ErrDiscriminantMismatch is returned when a form of one group is
	// passed to an operation of another.
	ErrDiscriminantMismatch = errors.New("group: discriminant mismatch")

	// ErrInvalidArgument is returned for out-of-domain arguments, such as
	// a negative exponent or an undersized derivation length.
	ErrInvalidArgument = errors.New("group: invalid argument")

	// ErrMalformedForm is returned when decoding rejects an input that is
	// not the canonical encoding of a reduced primitive form, and when a
	// form constructor is handed coefficients that do not describe one.
	ErrMalformedForm = errors.New("group: malformed form")

	// ErrDerivationExhausted is returned when the bounded searches in
	// DeriveDiscriminant, HashToForm or HashToPrime find no candidate.
	// Seeing it in practice means the input policy is wrong, not that the
	// caller should retry.
	ErrDerivationExhausted = errors.New("group: derivation exhausted")

	// ErrInternal flags a broken arithmetic invariant, such as an exact
	// division with a remainder. It indicates a bug, not bad input.
	ErrInternal = errors.New("group: internal invariant violated")
)
