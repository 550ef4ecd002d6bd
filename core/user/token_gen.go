package user

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
)

var (
	tokenSalt = []byte("my-lms.core.user.token_gen")
	NowFunc   = time.Now // mockable

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// EncodeUID base64 encodes the ID of `usr`.
func EncodeUID(usr User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(usr.ID)))
}

func decodeUID(uid string) (int, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(idBytes))
}

// TokenGenerator makes and checks password reset tokens.
// A token is bound to the password hash and last login of the user: changing either invalidates it.
type TokenGenerator struct {
	secretKey string
	timeout   time.Duration
}

func NewTokenGenerator(conf *core.Config) TokenGenerator {
	return TokenGenerator{secretKey: conf.SecretKey, timeout: conf.PasswordResetTimeoutDelta}
}

// MakeToken generates a password reset token for `usr`.
func (g TokenGenerator) MakeToken(usr User) (string, error) {
	return g.makeTokenWithTimestamp(usr, numDaysSince2001(NowFunc()))
}

// verify checks that `token` is a valid, unexpired password reset token for `usr`.
func (g TokenGenerator) verify(usr User, token string) error {
	if token == "" {
		return errInvalidToken
	}

	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return errInvalidToken
	}
	data, err := b32.DecodeString(parts[0])
	if err != nil {
		return errInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return errInvalidToken
	}

	// check that token has not been tampered with
	newToken, err := g.makeTokenWithTimestamp(usr, ts)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(newToken), []byte(token)) == 0 {
		return errInvalidToken
	}

	// check that the timestamp is within limit
	if (numDaysSince2001(NowFunc()) - ts) > int(g.timeout/(24*time.Hour)) {
		return errTokenExpired
	}
	return nil
}

func (g TokenGenerator) makeTokenWithTimestamp(usr User, ts int) (string, error) {
	sig, err := g.sign(hashValue(usr, ts))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", b32.EncodeToString([]byte(strconv.Itoa(ts))), sig), nil
}

func (g TokenGenerator) sign(val []byte) (string, error) {
	key := sha256.Sum256(append(append([]byte(nil), tokenSalt...), g.secretKey...))
	h := hmac.New(sha256.New, key[:])
	if _, err := h.Write(val); err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}

func numDaysSince2001(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}

func hashValue(usr User, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(strconv.Itoa(usr.ID))
	val.Write(usr.PasswordHash)
	// second precision: the database may not keep nanoseconds
	if usr.LastLogin.Valid {
		val.WriteString(strconv.FormatInt(usr.LastLogin.Time.Unix(), 10))
	}
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}
