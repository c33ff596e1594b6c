package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"holdem-server/internal/config"
	"holdem-server/pkg/token"

	jwtgo "github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Issuer issues the JWT
const Issuer = "holdem-server"

// Audience is the intended JWT audience
const Audience = "holdem-client"

// Lifetime is how long a signed player token is honored
const Lifetime = time.Hour * 24

var secret []byte

// Claims identify one seated player
// Session is the random id handed out at join, so a token for a player who left
// does not work for a later player with the same name.
type Claims struct {
	GameID   int64  `json:"gid"`
	Username string `json:"usr"`
	Session  string `json:"sid"`
	jwtgo.StandardClaims
}

// LoadKeys will load the signing secret from the configuration
// Without one a random secret is generated, and tokens only survive until restart.
func LoadKeys() {
	s := config.Instance().JWT.Secret
	if s == "" {
		logrus.Warn("no jwt secret configured, generating one")

		var err error
		s, err = token.Generate(64)
		if err != nil {
			logrus.WithError(err).Fatal("could not generate jwt secret")
		}
	}

	SetSecret([]byte(s))
}

// SetSecret replaces the HMAC signing secret
func SetSecret(b []byte) {
	secret = b
}

// Sign will sign a JWT for the player
func Sign(gameID int64, username, session string) (string, error) {
	if secret == nil {
		panic("LoadKeys() not called")
	}

	now := time.Now()
	t := jwtgo.NewWithClaims(jwtgo.SigningMethodHS256, Claims{
		GameID:   gameID,
		Username: username,
		Session:  session,
		StandardClaims: jwtgo.StandardClaims{
			Audience:  Audience,
			ExpiresAt: now.Add(Lifetime).Unix(),
			Id:        uuid.New().String(),
			IssuedAt:  now.Unix(),
			Issuer:    Issuer,
			Subject:   strconv.FormatInt(gameID, 10) + ":" + username,
		},
	})

	return t.SignedString(secret)
}

// ValidPlayer will validate a signed JWT and return its claims
func ValidPlayer(signedString string) (*Claims, error) {
	if secret == nil {
		panic("LoadKeys() not called")
	}

	t, err := jwtgo.ParseWithClaims(signedString, &Claims{}, func(t *jwtgo.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtgo.SigningMethodHMAC); !ok {
			return nil, errors.New("expected HS256 signing method")
		}

		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := t.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("expected *Claims, got %T", t.Claims)
	}

	if !t.Valid {
		return nil, errors.New("claims were not valid")
	}

	if !claims.VerifyAudience(Audience, true) {
		return nil, errors.New("invalid audience")
	}

	if !claims.VerifyIssuer(Issuer, true) {
		return nil, errors.New("invalid issuer")
	}

	if claims.Username == "" || claims.Session == "" {
		return nil, errors.New("missing player")
	}

	return claims, nil
}
