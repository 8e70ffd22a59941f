// Package models defines domain entities and persistence interfaces for the rekordsync CLI.
//
// The package contains two categories of types:
//
// 1. Library value objects, passed by reference from the library backend:
//   - [Track] : a source-library track with mutable title/artists and immutable originals
//   - [Playlist] : an ordered track list, optionally nested under a parent folder
//   - [Collection] : top-level playlists plus the deduplicated id → track table
//
// 2. Persistent entities backed by the local sqlite cache:
//   - [PersistedMapping] : a cached source-track → Spotify-track correspondence
//
// Persistent entities implement the Model interface providing ID generation, timestamps,
// and validation. The Repository[T] interface defines standard CRUD operations.
package models
