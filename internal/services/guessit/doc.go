// Package guessit derives a searchable title, artist, and year from a media
// file name.
//
// MP3 files are read for ID3v2 tags first. Everything else goes through the
// Python guessit library; when that is unavailable the file name stem is
// cleaned into a title so lookups still have something to search for.
package guessit
