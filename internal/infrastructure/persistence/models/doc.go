// Package models holds the GORM row types behind the repositories.
//
// Domain entities carry no ORM tags; each model here owns its table
// mapping and converts to and from its entity with ToDomain and a
// ...FromDomain constructor.
//
//   - identity.go: users
//   - social.go: follows
//   - place.go: saved_places
//   - review.go: place_reviews, review_likes
package models
