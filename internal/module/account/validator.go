package account

import (
	emailverifier "github.com/AfterShip/email-verifier"
)

// EmailValidator rejects addresses that cannot receive an invite.
type EmailValidator interface {
	Validate(email string) error
}

// SyntaxValidator checks address syntax offline, optionally rejecting
// disposable-mail domains.
type SyntaxValidator struct {
	verifier         *emailverifier.Verifier
	rejectDisposable bool
}

// NewSyntaxValidator creates a validator that never touches the network.
func NewSyntaxValidator(rejectDisposable bool) *SyntaxValidator {
	verifier := emailverifier.NewVerifier()

	verifier.DisableSMTPCheck()
	verifier.DisableGravatarCheck()
	verifier.DisableDomainSuggest()
	verifier.DisableAutoUpdateDisposable()

	return &SyntaxValidator{verifier: verifier, rejectDisposable: rejectDisposable}
}

// Validate implements EmailValidator.
func (v *SyntaxValidator) Validate(email string) error {
	syntax := v.verifier.ParseAddress(normalizeEmail(email))
	if !syntax.Valid {
		return ErrInvalidEmail
	}
	if v.rejectDisposable && v.verifier.IsDisposable(syntax.Domain) {
		return ErrInvalidEmail
	}
	return nil
}
