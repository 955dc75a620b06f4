package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ==================== JWT 配置 ====================

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey      string        // 签名密钥
	AccessTokenTTL time.Duration // Access Token 有效期
	Issuer         string        // 签发者
}

// DefaultJWTConfig 默认配置
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		SecretKey:      "nhadat-secret-key-change-in-production",
		AccessTokenTTL: 24 * time.Hour,
		Issuer:         "nhadat",
	}
}

// 全局配置
var jwtConfig = DefaultJWTConfig()

// SetJWTConfig 设置 JWT 配置
func SetJWTConfig(cfg *JWTConfig) {
	jwtConfig = cfg
}

// ==================== Claims 定义 ====================

// OwnerClaims 会话声明：OwnerID 是向导所有读写的归属范围
type OwnerClaims struct {
	OwnerID string `json:"owner_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// ==================== Token 生成 / 解析 ====================

// GenerateAccessToken 生成 Access Token
func GenerateAccessToken(ownerID, email, role string) (string, error) {
	now := time.Now()
	claims := OwnerClaims{
		OwnerID: ownerID,
		Email:   email,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtConfig.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtConfig.AccessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.SecretKey))
}

// ParseToken 解析并校验 Token
func ParseToken(tokenString string) (*OwnerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OwnerClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtConfig.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*OwnerClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ==================== 中间件 ====================

const ownerContextKey = "auth_owner"

// AuthRequired 会话中间件
// 缺会话是前置条件失败：直接 401，核心逻辑不做兜底
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "未登录",
			})
			return
		}

		claims, err := ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "会话无效或已过期",
			})
			return
		}

		c.Set(ownerContextKey, claims)
		c.Next()
	}
}

// CurrentOwnerID 从请求上下文取当前用户ID，未登录返回空串
func CurrentOwnerID(c *gin.Context) string {
	v, ok := c.Get(ownerContextKey)
	if !ok {
		return ""
	}
	claims, ok := v.(*OwnerClaims)
	if !ok {
		return ""
	}
	return claims.OwnerID
}
