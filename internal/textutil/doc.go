// Package textutil holds the small string transforms used to derive unit keys,
// cache file names, and search queries from media file names.
package textutil
