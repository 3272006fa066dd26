package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken は署名不一致・構造不正・期限切れのトークンを示します。
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims はアクセストークンの標準クレームと独自クレームをまとめた構造体です。
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// Codec は自己完結型の署名付きトークンを発行・検証します。
// 検証はローカルで完結し、I/O を伴いません。
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec はトークンコーデックを作成します。
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue は指定された呼び出し元のアクセストークンを発行します。
// 有効期限は now + ttl です。
func (cd *Codec) Issue(userID int64, username, role string) (string, error) {
	return cd.IssueWithTTL(userID, username, role, cd.ttl)
}

// IssueWithTTL は有効期限を指定してトークンを発行します。
func (cd *Codec) IssueWithTTL(userID int64, username, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
		Role:     role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cd.secret)
}

// Verify はトークンを検証し、クレームを返します。
// 署名不一致・構造不正・期限切れはすべて ErrInvalidToken になります。
func (cd *Codec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return cd.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Identity はクレームから呼び出し元情報を組み立てます。
// ロールが空の場合も Roles は nil ではなく空スライスになります。
func (cd *Codec) Identity(claims *Claims) (CallerIdentity, error) {
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return CallerIdentity{}, ErrInvalidToken
	}

	roles := []string{}
	if claims.Role != "" {
		roles = append(roles, claims.Role)
	}

	return CallerIdentity{
		ID:       id,
		Username: claims.Username,
		Roles:    roles,
	}, nil
}
