// Package tmdb is a thin client for The Movie Database search and details
// endpoints, one request per call with the language chosen by the caller.
package tmdb
