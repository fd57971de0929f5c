// Package metadata resolves identifier metadata for units through TMDB and
// iTunes, backed by a JSON file cache.
//
// A TMDB lookup searches with the preferred language, then the fallback
// language, and fetches details the same way. Successful results are cached
// under the unit key (movies, series) or the artist/title pair (music). A
// cache file that fails to decode is deleted and treated as a miss. Negative
// results are never cached.
package metadata
