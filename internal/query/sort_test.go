package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestResolveSort_DefaultWhenEmpty(t *testing.T) {
	def := bson.D{{Key: "createdAt", Value: -1}}
	assert.Equal(t, def, ResolveSort("", "desc", def))
}

func TestResolveSort_Explicit(t *testing.T) {
	def := bson.D{{Key: "createdAt", Value: -1}}

	got := ResolveSort("minPrice", "desc", def)
	assert.Equal(t, bson.D{{Key: "minPrice", Value: -1}}, got)

	// Anything other than "desc" sorts ascending.
	got = ResolveSort("minPrice", "asc", def)
	assert.Equal(t, bson.D{{Key: "minPrice", Value: 1}}, got)

	got = ResolveSort("city", "", def)
	assert.Equal(t, bson.D{{Key: "city", Value: 1}}, got)
}
