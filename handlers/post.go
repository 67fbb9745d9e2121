package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"ripple/database"
	"ripple/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentRequest struct {
	Text string `json:"text"`
}

// postWithAuthor is the aggregation shape of a post joined to its author.
type postWithAuthor struct {
	models.Post `bson:",inline"`
	Author      *models.User `bson:"author"`
}

// postID resolves the :id path parameter. A malformed id can never reference
// an existing post, so it gets the same 404 as a missing one.
func postID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// CreatePost stores a new post from a multipart form carrying "content" and
// an optional "image" attachment. Empty content is accepted as-is.
func CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	content := c.PostForm("content")

	var image *string
	if fileHeader, err := c.FormFile("image"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read attachment"})
			return
		}
		ref, err := mediaStore.Save(fileHeader.Filename, file)
		file.Close()
		if err != nil {
			log.Printf("CreatePost attachment error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store attachment"})
			return
		}
		image = &ref
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post := models.Post{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Content:   content,
		Image:     image,
		Likes:     []primitive.ObjectID{},
		Comments:  []models.Comment{},
		CreatedAt: time.Now().Unix(),
	}

	if _, err := database.Posts.InsertOne(ctx, post); err != nil {
		log.Printf("CreatePost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// CommentPost appends a comment to the post's embedded sequence with a single
// atomic push, so no read-modify-write window exists.
func CommentPost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	comment := models.Comment{
		Text:      req.Text,
		UserID:    userID,
		CreatedAt: time.Now().Unix(),
	}

	res, err := database.Posts.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		log.Printf("CommentPost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	respondWithPost(ctx, c, id)
}

// ToggleLike removes the caller from the like set when present, otherwise
// adds them. Both arms are single atomic updates: the pull is filtered on
// membership and the add uses $addToSet, so concurrent toggles cannot leave
// a duplicate entry.
func ToggleLike(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := database.Posts.UpdateOne(ctx,
		bson.M{"_id": id, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}},
	)
	if err != nil {
		log.Printf("ToggleLike error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update likes"})
		return
	}

	if res.MatchedCount == 0 {
		res, err = database.Posts.UpdateOne(ctx,
			bson.M{"_id": id},
			bson.M{"$addToSet": bson.M{"likes": userID}},
		)
		if err != nil {
			log.Printf("ToggleLike error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update likes"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
	}

	respondWithPost(ctx, c, id)
}

// GetPosts lists every post with the author reference and each comment's
// author reference expanded to {id, username} only.
func GetPosts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$author"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	cursor, err := database.Posts.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("GetPosts aggregate error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}
	defer cursor.Close(ctx)

	var posts []postWithAuthor
	if err := cursor.All(ctx, &posts); err != nil {
		log.Printf("GetPosts decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode posts"})
		return
	}

	usernames, err := commentUsernames(ctx, posts)
	if err != nil {
		log.Printf("GetPosts comment authors error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	response := make([]map[string]interface{}, len(posts))
	for i, p := range posts {
		comments := make([]map[string]interface{}, len(p.Comments))
		for j, cm := range p.Comments {
			comments[j] = map[string]interface{}{
				"text":      cm.Text,
				"createdAt": cm.CreatedAt,
				"user":      userSummary(cm.UserID, usernames[cm.UserID]),
			}
		}

		authorName := ""
		if p.Author != nil {
			authorName = p.Author.Username
		}

		response[i] = map[string]interface{}{
			"id":        p.ID.Hex(),
			"content":   p.Content,
			"image":     p.Image,
			"likes":     p.Likes,
			"createdAt": p.CreatedAt,
			"user":      userSummary(p.UserID, authorName),
			"comments":  comments,
		}
	}

	c.JSON(http.StatusOK, response)
}

// DeletePost removes a post owned by the caller, then its attachment.
func DeletePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var post models.Post
	err := database.Posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("DeletePost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if post.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	if _, err := database.Posts.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		log.Printf("DeletePost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	// Compensating cleanup; the document is already gone, so a failed file
	// remove is only logged.
	if post.Image != nil && mediaStore != nil {
		if err := mediaStore.Remove(*post.Image); err != nil {
			log.Printf("DeletePost attachment cleanup error: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// respondWithPost returns the current state of a post after a mutation.
func respondWithPost(ctx context.Context, c *gin.Context, id primitive.ObjectID) {
	var post models.Post
	err := database.Posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("Post fetch error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// commentUsernames resolves every comment author across the listed posts
// with one batched query instead of a lookup per comment.
func commentUsernames(ctx context.Context, posts []postWithAuthor) (map[primitive.ObjectID]string, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, p := range posts {
		for _, cm := range p.Comments {
			if !seen[cm.UserID] {
				seen[cm.UserID] = true
				ids = append(ids, cm.UserID)
			}
		}
	}

	usernames := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return usernames, nil
	}

	opts := options.Find().SetProjection(bson.M{"username": 1})
	cursor, err := database.Users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		usernames[u.ID] = u.Username
	}
	return usernames, nil
}

func userSummary(id primitive.ObjectID, username string) map[string]interface{} {
	return map[string]interface{}{
		"id":       id.Hex(),
		"username": username,
	}
}
