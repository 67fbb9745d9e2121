package handlers

import (
	"net/http"

	"ripple/media"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collaborators shared across handler files, wired up from main at startup.
var mediaStore *media.Store
var jwtSecret string

// SetMediaStore sets the attachment store used by the post handlers.
func SetMediaStore(store *media.Store) {
	mediaStore = store
}

// SetJWTSecret sets the signing secret used when issuing tokens.
func SetJWTSecret(secret string) {
	jwtSecret = secret
}

// currentUserID resolves the authenticated caller's id placed on the context
// by the auth middleware. A false return means the response is already
// written.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return userID, true
}
