package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Hash returns the hex encoded SHA-256 digest of data. Servers hash the
// marshalled working set and shards with it to get a mosaic's content hash.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// mosaicDigest folds the content hash and every option that changes the
// artifact bytes into one digest. Fields are written in a fixed order with
// a separator no option value can contain.
func mosaicDigest(contentHash string, opts MosaicKeyOpts) string {
	h := sha256.New()
	for _, field := range []string{
		contentHash,
		opts.Format,
		fmt.Sprint(opts.Width),
		fmt.Sprint(opts.Height),
		fmt.Sprint(opts.Interactive),
	} {
		io.WriteString(h, field)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
