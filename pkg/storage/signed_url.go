package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken marks a malformed or tampered download token.
	ErrInvalidToken = errors.New("invalid download token")
	// ErrTokenExpired marks a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("download token expired")
)

// Ticket is the metadata carried by a download token.
type Ticket struct {
	ExportID  string
	Path      string
	ExpiresAt time.Time
}

// DownloadSigner creates and validates HMAC signed download tokens.
type DownloadSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewDownloadSigner constructs a signer with the provided secret and TTL.
func NewDownloadSigner(secret string, ttl time.Duration) *DownloadSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DownloadSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token of the form id.expiry.path.signature.
func (s *DownloadSigner) Sign(exportID, relPath string) (string, time.Time, error) {
	if exportID == "" || relPath == "" || strings.Contains(exportID, ".") {
		return "", time.Time{}, fmt.Errorf("export id and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	token := strings.Join([]string{exportID, ts, encodedPath, s.mac(exportID, ts, encodedPath)}, ".")
	return token, expiresAt, nil
}

// Verify checks the signature and expiry of token.
func (s *DownloadSigner) Verify(token string) (*Ticket, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return nil, ErrInvalidToken
	}
	exportID, ts, encodedPath, signature := parts[0], parts[1], parts[2], parts[3]
	if !hmac.Equal([]byte(s.mac(exportID, ts, encodedPath)), []byte(signature)) {
		return nil, ErrInvalidToken
	}
	rawPath, err := base64.RawURLEncoding.DecodeString(encodedPath)
	if err != nil {
		return nil, ErrInvalidToken
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	ticket := &Ticket{ExportID: exportID, Path: string(rawPath), ExpiresAt: time.Unix(expUnix, 0)}
	if s.now().After(ticket.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	return ticket, nil
}

func (s *DownloadSigner) mac(exportID, ts, encodedPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(exportID + "|" + ts + "|" + encodedPath))
	return hex.EncodeToString(mac.Sum(nil))
}
