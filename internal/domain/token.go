package domain

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"time"
)

const (
	RefreshScope string = "refresh"
	tokenLength  int    = 32
)

type Token struct {
	Plaintext string
	Hash      []byte
	UserId    int64
	Expiry    time.Time
	Scope     string
}

func GenerateToken(userId int64, ttl time.Duration, scope string) (*Token, error) {
	randomBytes := make([]byte, tokenLength)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return nil, err
	}

	plaintext := base64.RawURLEncoding.EncodeToString(randomBytes)

	token := &Token{
		Plaintext: plaintext,
		Hash:      HashToken(plaintext),
		UserId:    userId,
		Expiry:    time.Now().Add(ttl),
		Scope:     scope,
	}

	return token, nil
}

func HashToken(plaintext string) []byte {
	hash := sha256.Sum256([]byte(plaintext))
	return hash[:]
}

type TokenRepository interface {
	Create(context.Context, *Token) error
	// Rotate deletes the token identified by oldHash and stores next in its
	// place. It fails with ErrRecordNotFound when oldHash is unknown.
	Rotate(ctx context.Context, oldHash []byte, next *Token) error
	DeleteAllForUser(ctx context.Context, tokenScope string, userID int) error
}
