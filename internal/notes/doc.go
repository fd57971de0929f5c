// Package notes renders the text artifacts written beside each torrent: the
// banner-wrapped technical note, the identifier note and the BBCode release
// note.
package notes
