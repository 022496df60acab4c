package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Row decoding
// ============================================================================

// nodeProps returns the properties of the node stored under key. Map
// projections are accepted too so callers can RETURN n {.*}.
func nodeProps(row Row, key string) (map[string]interface{}, bool) {
	switch v := row[key].(type) {
	case neo4j.Node:
		return v.Props, true
	case *neo4j.Node:
		if v == nil {
			return nil, false
		}
		return v.Props, true
	case map[string]interface{}:
		return v, true
	}
	return nil, false
}

func userFromRow(row Row, key string) *User {
	props, ok := nodeProps(row, key)
	if !ok {
		return nil
	}
	return &User{
		ID:             getStringFromMap(props, "userId", ""),
		Username:       getStringFromMap(props, "username", ""),
		FullName:       getStringFromMap(props, "fullName", ""),
		Email:          getStringFromMap(props, "email", ""),
		PasswordHash:   getStringFromMap(props, "passwordHash", ""),
		ProfilePicture: getStringFromMap(props, "profilePicture", ""),
		Bio:            getStringFromMap(props, "bio", ""),
		CreatedAt:      getTimeFromMap(props, "createdAt", time.Time{}),
		IsAdmin:        getBoolFromMap(props, "isAdmin", false),
	}
}

func postFromRow(row Row, key string) *Post {
	props, ok := nodeProps(row, key)
	if !ok {
		return nil
	}
	return &Post{
		ID:        getStringFromMap(props, "postId", ""),
		ImageURL:  getStringFromMap(props, "imageURL", ""),
		Caption:   getStringFromMap(props, "caption", ""),
		CreatedAt: getTimeFromMap(props, "createdAt", time.Time{}),
		Author:    getStringFromMap(props, "author", ""),
		LikeCount: getInt64FromMap(props, "likeCount", 0),
	}
}

// commentFromRow expects the comment node under "c" plus the authorId,
// authorUsername and postId columns.
func commentFromRow(row Row) *Comment {
	props, ok := nodeProps(row, "c")
	if !ok {
		return nil
	}
	return &Comment{
		ID:             getStringFromMap(props, "commentId", ""),
		Content:        getStringFromMap(props, "content", ""),
		CreatedAt:      getTimeFromMap(props, "createdAt", time.Time{}),
		LikeCount:      getInt64FromMap(props, "likeCount", 0),
		AuthorID:       getStringFromMap(row, "authorId", ""),
		AuthorUsername: getStringFromMap(row, "authorUsername", ""),
		PostID:         getStringFromMap(row, "postId", ""),
	}
}

// Helper functions

func getStringFromMap(m map[string]interface{}, key string, defaultValue string) string {
	val, ok := m[key]
	if !ok {
		return defaultValue
	}
	if str, ok := val.(string); ok {
		return str
	}
	return defaultValue
}

func getTimeFromMap(m map[string]interface{}, key string, defaultValue time.Time) time.Time {
	val, ok := m[key]
	if !ok {
		return defaultValue
	}
	// Neo4j datetime values come as time.Time
	switch t := val.(type) {
	case time.Time:
		return t.UTC()
	case neo4j.LocalDateTime:
		return t.Time().UTC()
	}
	return defaultValue
}

func getInt64FromMap(m map[string]interface{}, key string, defaultValue int64) int64 {
	val, ok := m[key]
	if !ok {
		return defaultValue
	}
	switch n := val.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return defaultValue
}

func getBoolFromMap(m map[string]interface{}, key string, defaultValue bool) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return defaultValue
}

// Row is a map, so the same getters read plain columns.
func (r Row) int64(key string) int64 {
	return getInt64FromMap(r, key, 0)
}

func (r Row) str(key string) string {
	return getStringFromMap(r, key, "")
}

func (r Row) boolean(key string) bool {
	return getBoolFromMap(r, key, false)
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
