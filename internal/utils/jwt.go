package utils

import (
	"errors" // Sentinel errors
	"time"   // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// JWT Claims
type Claims struct {
	UserID               uint   `json:"user_id"`           // Custom claim for user ID
	Purpose              string `json:"purpose,omitempty"` // "session" or "ad_claim"
	jwt.RegisteredClaims        // Standard JWT claims
}

// ErrWrongPurpose is returned when a token is presented to the wrong endpoint
var ErrWrongPurpose = errors.New("token purpose mismatch")

// GenerateJWT creates a session token for a given user ID
func GenerateJWT(userID uint, secret string) (string, error) {
	// Set token claims
	claims := Claims{
		UserID:  userID,    // Custom claim for user ID
		Purpose: "session", // Session token
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)), // Token expires in 24 hours
			IssuedAt:  jwt.NewNumericDate(time.Now()),                     // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// GenerateAdClaimToken creates the claim token handed out when an ad starts.
// NotBefore is pushed past the ad's duration, so jwt/v5's own validation
// rejects any claim arriving before the ad could have finished. The short
// expiry bounds how long an abandoned reward stays claimable.
func GenerateAdClaimToken(userID uint, watchDuration time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,     // Custom claim for user ID
		Purpose: "ad_claim", // Reward claim token
		RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(now.Add(watchDuration)),                  // Claimable only after the ad ran
			ExpiresAt: jwt.NewNumericDate(now.Add(watchDuration + 10*time.Minute)), // Unclaimed rewards lapse
			IssuedAt:  jwt.NewNumericDate(now),                                     // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT parses and validates a token string for the expected purpose
func ParseJWT(tokenStr, secret, purpose string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	})
	// Check for parsing errors (includes expired and not-yet-valid tokens)
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.Purpose != purpose {
			return nil, ErrWrongPurpose // Session token on the claim endpoint or vice versa
		}
		return claims, nil // Return claims if valid
	}
	// Return error if token is invalid
	return nil, jwt.ErrSignatureInvalid
}
