package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"regexp"   // Regular expressions
	"strings"  // String manipulation

	"topup_store/internal/domain" // Importing domain models
	"topup_store/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password hashing
	"gorm.io/gorm"                 // GORM ORM library
)

// Request and Response structs
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`     // Display name must be provided
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Request struct for password change
type ChangePasswordRequest struct {
	Current string `json:"current" binding:"required"` // Current password, re-verified
	New     string `json:"new" binding:"required"`     // New password
}

// Response struct for authentication
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

var (
	nameRe  = regexp.MustCompile(`^[A-Za-z ]{3,30}$`)          // Letters and spaces, 3-30 chars
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`) // Plausible email shape
)

// isValidName checks the display name length and character class
func isValidName(name string) bool {
	return nameRe.MatchString(strings.TrimSpace(name))
}

// isValidEmail checks the email shape
func isValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// isValidPassword checks if the password length is between 8 and 15 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 15 // Return true if length is valid
}

// RegisterHandler creates a new account with a zero balance
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate name, email and password
		if !isValidName(req.Name) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name must be 3-30 letters"})
			return
		}
		if !isValidEmail(req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-15 characters"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		// Create user with lowercase email to ensure uniqueness; balance starts at 0
		user := domain.User{
			Name:     strings.TrimSpace(req.Name),
			Email:    strings.ToLower(req.Email),
			Password: string(hash),
		}
		// Attempt to create the user in the database
		if err := db.Create(&user).Error; err != nil {
			// Duplicate email is the common failure here
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already in use"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,    // New user ID
			"email":   user.Email, // Login email
		}).Info("User registered")
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// ChangePasswordHandler updates the password after re-verifying the current one
func ChangePasswordHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req ChangePasswordRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate new password length
		if !isValidPassword(req.New) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-15 characters"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account not found"})
			return
		}
		// Re-authenticate with the current credential before changing anything
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Current)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
			return
		}
		// Hash and store the new password
		hash, err := bcrypt.GenerateFromPassword([]byte(req.New), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		if err := db.Model(&user).Update("password", string(hash)).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID}).Info("Password changed")
		utils.InvalidateUserCache(context.Background(), rdb, user.ID) // Drop cached profile
		c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
	}
}
