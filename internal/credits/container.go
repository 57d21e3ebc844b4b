package credits

import (
	"bytes"
	"errors"
)

// RPG Maker encrypts only the first 16 bytes of a PNG and prefixes a 16-byte
// signature. Those 16 bytes are always the PNG signature and IHDR chunk
// head, so the image can be recovered without the key and re-wrapped by
// keeping the original 32-byte prefix.
const headerLen = 32

var (
	signature = []byte("RPGMV")
	pngHead   = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}
)

// ErrNotEncrypted is returned for data without the RPG Maker signature.
var ErrNotEncrypted = errors.New("credits: not an RPG Maker encrypted image")

// Decrypt splits an encrypted image into its 32-byte prefix and a plain PNG.
func Decrypt(data []byte) (header, img []byte, err error) {
	if len(data) < headerLen || !bytes.HasPrefix(data, signature) {
		return nil, nil, ErrNotEncrypted
	}
	header = append([]byte(nil), data[:headerLen]...)
	img = make([]byte, 0, len(pngHead)+len(data)-headerLen)
	img = append(img, pngHead...)
	img = append(img, data[headerLen:]...)
	return header, img, nil
}

// Encrypt wraps a plain PNG with a prefix taken from Decrypt.
func Encrypt(img, header []byte) []byte {
	out := make([]byte, 0, len(header)+len(img)-len(pngHead))
	out = append(out, header...)
	return append(out, img[len(pngHead):]...)
}
