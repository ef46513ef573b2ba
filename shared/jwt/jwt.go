package jwt

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/itchan-dev/blogfeed/shared/domain"
	internal_errors "github.com/itchan-dev/blogfeed/shared/errors"
	"github.com/itchan-dev/blogfeed/shared/logger"
)

// Claim names used by the managed auth service.
const (
	claimSubject  = "sub"
	claimUsername = "username"
	claimExpires  = "exp"
)

type JwtService interface {
	NewToken(session domain.Session) (string, error)
	DecodeToken(jwtStr string) (*jwt.Token, error)
	DecodeSession(jwtStr string) (domain.Session, error)
}

type Jwt struct {
	secretKey string
}

func New(secretKey string) JwtService {
	return &Jwt{secretKey}
}

// NewToken signs a token for session. Tokens are normally issued by the
// managed auth service; this is used for local development and tests.
func (j *Jwt) NewToken(session domain.Session) (string, error) {
	claims := jwt.MapClaims{}
	claims[claimSubject] = session.UserId
	claims[claimUsername] = session.Username
	if !session.ExpiresAt.IsZero() {
		claims[claimExpires] = session.ExpiresAt.Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		logger.Log.Error("can't sign token", "component", "jwt", "error", err)
		return "", errors.New("Can't create token")
	}

	return tokenString, nil
}

func (j *Jwt) DecodeToken(jwtStr string) (*jwt.Token, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &internal_errors.ErrorWithStatusCode{Message: fmt.Sprintf("Unexpected signing method: %v", token.Header["alg"]), StatusCode: http.StatusUnauthorized}
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Session expired", StatusCode: http.StatusUnauthorized}
		}
		logger.Log.Debug("invalid token", "component", "jwt", "error", err)
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid token signature", StatusCode: http.StatusUnauthorized}
	}

	if !token.Valid {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized}
	}

	return token, nil
}

// DecodeSession verifies jwtStr and extracts the session identity from it.
func (j *Jwt) DecodeSession(jwtStr string) (domain.Session, error) {
	token, err := j.DecodeToken(jwtStr)
	if err != nil {
		return domain.Session{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Session{}, errInvalidClaims
	}
	sub, _ := claims[claimSubject].(string)
	username, _ := claims[claimUsername].(string)
	if sub == "" || username == "" {
		return domain.Session{}, errInvalidClaims
	}

	session := domain.Session{UserId: sub, Username: username}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.ExpiresAt = exp.Time
	}
	return session, nil
}

var errInvalidClaims = &internal_errors.ErrorWithStatusCode{Message: "Invalid token claims", StatusCode: http.StatusUnauthorized}
