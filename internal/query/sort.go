package query

import "go.mongodb.org/mongo-driver/bson"

// ResolveSort turns sortBy/sortOrder request parameters into a bson.D sort
// document. An empty sortBy falls back to def. Only sortOrder "desc" sorts
// descending; anything else is ascending.
func ResolveSort(sortBy, sortOrder string, def bson.D) bson.D {
	if sortBy == "" {
		return def
	}
	dir := 1
	if sortOrder == "desc" {
		dir = -1
	}
	return bson.D{{Key: sortBy, Value: dir}}
}
