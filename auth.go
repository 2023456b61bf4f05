package main

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"

	"github.com/davemwangi/stocktrack/models"
)

const sessionName = "stocktrack_session"

var (
	sessionStore *sessions.CookieStore
	verifier     *oidc.IDTokenVerifier
)

func initSessions(key []byte) {
	if len(key) == 0 {
		slog.Warn("No session key provided, generating a random key; sessions will be invalid after a restart")
		key = make([]byte, 32)
		rand.Read(key)
	}
	sessionStore = sessions.NewCookieStore(key)
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	}
}

// initOIDC enables bearer-token authentication for the API routes. Tokens
// are matched to local users by their email claim.
func initOIDC(issuer, clientID string) error {
	provider, err := oidc.NewProvider(context.Background(), issuer)
	if err != nil {
		return err
	}
	verifier = provider.Verifier(&oidc.Config{ClientID: clientID})
	return nil
}

func handleRegister(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.PostForm("username"))
		email := strings.TrimSpace(c.PostForm("email"))
		password := c.PostForm("password")
		confirm := c.PostForm("confirm_password")

		if username == "" || email == "" || password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email and password are required"})
			return
		}
		if password != confirm {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
			return
		}

		var count int64
		db.Model(&models.User{}).Where("username = ?", username).Count(&count)
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
			return
		}
		db.Model(&models.User{}).Where("email = ?", email).Count(&count)
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
			return
		}

		user := models.User{Username: username, Email: email}
		if err := user.SetPassword(password); err != nil {
			slog.Error("Failed to hash password", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		if err := db.Create(&user).Error; err != nil {
			slog.Error("Failed to create user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/login")
	}
}

func handleLogin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.PostForm("username"))
		password := c.PostForm("password")

		var user models.User
		err := db.Where("username = ?", username).First(&user).Error
		if err != nil || !user.CheckPassword(password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}

		session, _ := sessionStore.Get(c.Request, sessionName)
		session.Values["user_id"] = user.ID
		if err := session.Save(c.Request, c.Writer); err != nil {
			slog.Error("Failed to save session", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/dashboard")
	}
}

func handleLogout(c *gin.Context) {
	session, _ := sessionStore.Get(c.Request, sessionName)
	session.Options.MaxAge = -1
	session.Save(c.Request, c.Writer)
	c.Redirect(http.StatusSeeOther, "/login")
}

// requireAuth resolves the requesting user from the session cookie, or from
// an OIDC bearer token when a verifier is configured. Browser routes
// redirect to /login; API routes get a 401.
func requireAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth := c.GetHeader("Authorization"); verifier != nil && strings.HasPrefix(auth, "Bearer ") {
			token := strings.TrimPrefix(auth, "Bearer ")
			idToken, err := verifier.Verify(c.Request.Context(), token)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				return
			}
			var claims struct {
				Email string `json:"email"`
			}
			if err := idToken.Claims(&claims); err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				return
			}
			var user models.User
			if err := db.Where("email = ?", claims.Email).First(&user).Error; err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
				return
			}
			c.Set("userID", user.ID)
			c.Next()
			return
		}

		session, _ := sessionStore.Get(c.Request, sessionName)
		uid, ok := session.Values["user_id"].(uint)
		if !ok {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			} else {
				c.Redirect(http.StatusSeeOther, "/login")
				c.Abort()
			}
			return
		}
		c.Set("userID", uid)
		c.Next()
	}
}

func currentUserID(c *gin.Context) uint {
	return c.GetUint("userID")
}
