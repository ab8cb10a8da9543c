// Package models defines the platform-neutral records exchanged between the sync core and the platform adapters.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): fixed shapes every platform adapter maps its JSON into
//   - [TrackMetadata] : Song metadata (title, artists, album, id/uri)
//   - [PlaylistRecord] : Source playlist with entries and last-modified instant
//   - [TargetPlaylist] : Target playlist handle (uri, id, name)
//   - [PlaylistTracks] : Target playlist contents with per-entry added-at instants
//
// 2. Persistent Entities: database-backed records
//   - [SyncReport] : Per-playlist outcome of one sync run
//
// Timestamps are normalized to UTC [time.Time] values by the adapters; a zero value means the platform did not
// report one.
package models
