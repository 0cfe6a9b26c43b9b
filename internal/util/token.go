package util

import (
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"k8s.io/klog/v2"

	"github.com/devmatch-io/devmatch/dao/model"
	"github.com/devmatch-io/devmatch/pkg/config"
)

type (
	JWTClaims struct {
		UserID      uint       `json:"ui"`
		DeveloperID uint       `json:"di"`
		Username    string     `json:"un"`
		Role        model.Role `json:"ro"`
		jwt.RegisteredClaims
	}
	JWTMessage struct {
		UserID      uint       `json:"userID"`
		DeveloperID uint       `json:"developerID"` // 0 when the user has no developer profile
		Username    string     `json:"username"`
		Role        model.Role `json:"role"`
	}
)

type TokenManager struct {
	accessSecret    string
	refreshSecret   string
	accessTokenTTL  int
	refreshTokenTTL int
}

var (
	once     sync.Once
	tokenMgr *TokenManager
)

func GetTokenMgr() *TokenManager {
	once.Do(func() {
		auth := config.GetConfig().Auth
		tokenMgr = &TokenManager{
			accessSecret:    auth.AccessTokenSecret,
			refreshSecret:   auth.RefreshTokenSecret,
			accessTokenTTL:  auth.AccessTokenExpiryHour,
			refreshTokenTTL: auth.RefreshTokenExpiryHour,
		}
	})
	return tokenMgr
}

func (tm *TokenManager) createToken(msg *JWTMessage, secret string, ttl int) (string, error) {
	expiresAt := time.Now().Add(time.Hour * time.Duration(ttl))

	claims := &JWTClaims{
		UserID:      msg.UserID,
		DeveloperID: msg.DeveloperID,
		Username:    msg.Username,
		Role:        msg.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// CreateTokens creates a new access token and a new refresh token
func (tm *TokenManager) CreateTokens(msg *JWTMessage) (
	accessToken string, refreshToken string, err error) {
	accessToken, err = tm.createToken(msg, tm.accessSecret, tm.accessTokenTTL)
	if err != nil {
		klog.Error(err)
		return "", "", err
	}
	refreshToken, err = tm.createToken(msg, tm.refreshSecret, tm.refreshTokenTTL)
	if err != nil {
		klog.Error(err)
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (tm *TokenManager) CheckAccessToken(requestToken string) (JWTMessage, error) {
	return tm.checkToken(requestToken, tm.accessSecret)
}

func (tm *TokenManager) CheckRefreshToken(requestToken string) (JWTMessage, error) {
	return tm.checkToken(requestToken, tm.refreshSecret)
}

func (tm *TokenManager) checkToken(requestToken, secret string) (JWTMessage, error) {
	claims := JWTClaims{}
	_, err := jwt.ParseWithClaims(requestToken, &claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	return JWTMessage{
		UserID:      claims.UserID,
		DeveloperID: claims.DeveloperID,
		Username:    claims.Username,
		Role:        claims.Role,
	}, err
}
