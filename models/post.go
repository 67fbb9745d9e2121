package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID   `bson:"user" json:"user"`
	Content   string               `bson:"content" json:"content"`
	Image     *string              `bson:"image" json:"image"` // web path under /uploads, null when no attachment
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments  []Comment            `bson:"comments" json:"comments"`
	CreatedAt int64                `bson:"createdAt" json:"createdAt"`
}

type Comment struct {
	Text      string             `bson:"text" json:"text"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
}
