// Command id3map reads and edits the ID3v2 tags of MP3 files using the
// MusicBrainz Picard key names.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
