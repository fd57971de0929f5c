// Package mkbrr wraps the mkbrr CLI used to create, re-announce, and inspect
// private .torrent files.
package mkbrr
