package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"google.golang.org/grpc/metadata"
)

type ctxKey int

const (
	actorKey ctxKey = iota
	localeKey
)

// SystemActor attributes work started by the service itself (listeners, scheduled jobs).
const SystemActor = "system"

type UserContext struct {
	UserID string
	Role   string
}

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// TokenParser validates HS256 bearer tokens issued by the plant portal.
type TokenParser struct {
	secret []byte
}

func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

func (p *TokenParser) Parse(token string) (*UserContext, error) {
	if len(p.secret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, err
	}
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, errors.New("token has no subject")
	}
	return &UserContext{UserID: userID, Role: claims.Role}, nil
}

// Issue signs a token for userID. Used by tooling and tests.
func (p *TokenParser) Issue(userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: userID,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	})
	return t.SignedString(p.secret)
}

func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey, locale)
}

// GetActor returns the acting user. The interceptor puts it on the context; incoming
// metadata is the fallback. Empty when neither carries one.
func GetActor(ctx context.Context) string {
	if val, ok := ctx.Value(actorKey).(string); ok && val != "" {
		return val
	}
	return firstMetadata(ctx, "x-user-id")
}

func GetLocale(ctx context.Context) string {
	if val, ok := ctx.Value(localeKey).(string); ok {
		return val
	}
	return firstMetadata(ctx, "accept-language")
}

// ResolveActor reads x-user-id first, then a bearer token in authorization.
func ResolveActor(ctx context.Context, parser *TokenParser) (string, error) {
	if id := firstMetadata(ctx, "x-user-id"); id != "" {
		return id, nil
	}
	authz := firstMetadata(ctx, "authorization")
	if authz == "" || parser == nil {
		return "", nil
	}
	token := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	user, err := parser.Parse(token)
	if err != nil {
		return "", err
	}
	return user.UserID, nil
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if val := md.Get(key); len(val) > 0 {
		return val[0]
	}
	return ""
}
