package mux

import (
	"time"

	grecaptcha "github.com/ezzarghili/recaptcha-go"
	"github.com/sirupsen/logrus"
)

type recaptcha interface {
	// Verify will verify the token is valid
	Verify(token string) error
}

// newRecaptcha returns nil when no secret is configured, which skips the check
func newRecaptcha(secret string) recaptcha {
	if secret == "" {
		return nil
	}

	captcha, err := grecaptcha.NewReCAPTCHA(secret, grecaptcha.V3, 10*time.Second)
	if err != nil {
		logrus.WithError(err).Fatal("could not load recaptcha")
	}

	return &captcha
}
