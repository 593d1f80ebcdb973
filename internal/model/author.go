package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthorCategory is the closed set of writing categories an author
// profile may carry.
type AuthorCategory string

const (
	CategoryPoets           AuthorCategory = "Poets"
	CategoryPlaywrights     AuthorCategory = "Playwrights"
	CategoryNovelist        AuthorCategory = "Novelist"
	CategoryJournalist      AuthorCategory = "Journalist"
	CategoryCopywriter      AuthorCategory = "Copywriter"
	CategoryTechnicalWriter AuthorCategory = "Technical writer"
	CategoryBlogger         AuthorCategory = "Blogger"
	CategoryScreenwriter    AuthorCategory = "Screenwriter"
	CategorySongwriter      AuthorCategory = "Songwriter"
	CategoryColumnist       AuthorCategory = "Columnist"
	CategoryHistorian       AuthorCategory = "Historian"
	CategoryResearcher      AuthorCategory = "Researcher"
	CategoryEditor          AuthorCategory = "Editor"
	CategoryStoryWriter     AuthorCategory = "Story writer"
	CategoryOthers          AuthorCategory = "Others"
)

var authorCategories = map[AuthorCategory]bool{
	CategoryPoets:           true,
	CategoryPlaywrights:     true,
	CategoryNovelist:        true,
	CategoryJournalist:      true,
	CategoryCopywriter:      true,
	CategoryTechnicalWriter: true,
	CategoryBlogger:         true,
	CategoryScreenwriter:    true,
	CategorySongwriter:      true,
	CategoryColumnist:       true,
	CategoryHistorian:       true,
	CategoryResearcher:      true,
	CategoryEditor:          true,
	CategoryStoryWriter:     true,
	CategoryOthers:          true,
}

// ParseAuthorCategory returns the matching category, or CategoryOthers
// when the value is empty or not in the set.
func ParseAuthorCategory(s string) AuthorCategory {
	if authorCategories[AuthorCategory(s)] {
		return AuthorCategory(s)
	}
	return CategoryOthers
}

// Author is the role extension document in the `authors` collection.
// Exactly one exists per account with UserType == RoleAuthor; it is
// created together with the account and removed when the account is
// deleted.
type Author struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Owner     primitive.ObjectID   `bson:"owner"`
	Bio       string               `bson:"bio"`
	Category  AuthorCategory       `bson:"category"`
	Products  []primitive.ObjectID `bson:"products"`
	Rating    float64              `bson:"rating"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}
