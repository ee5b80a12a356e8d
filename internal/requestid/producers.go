package requestid

import (
	"crypto/rand"
	"net/http"

	"github.com/google/uuid"
)

// UUIDv4Producer mints a random UUIDv4 per request.
type UUIDv4Producer struct{}

func (UUIDv4Producer) MakeRequestId(*http.Request) RequestId {
	return New(uuid.NewString())
}

// nanoIDAlphabet is the 64-character URL-safe alphabet used by NanoID.
const nanoIDAlphabet = "useandom-26T198340PX75pxJACKVERYMINDBUSHWOLF_GQZbfghjklqvwyzrict"

const nanoIDLength = 21

// NanoIDProducer mints a 21-character id drawn from a 64-char URL-safe
// alphabet via rejection sampling: each random byte is used as an index
// only if it is smaller than the alphabet length, otherwise it is
// discarded and another byte is drawn, avoiding modulo bias.
type NanoIDProducer struct{}

func (NanoIDProducer) MakeRequestId(*http.Request) RequestId {
	id, err := generateNanoID()
	if err != nil {
		return RequestId{}
	}
	return New(id)
}

func generateNanoID() (string, error) {
	out := make([]byte, 0, nanoIDLength)
	buf := make([]byte, nanoIDLength)
	for len(out) < nanoIDLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if len(out) == nanoIDLength {
				break
			}
			if int(b) >= len(nanoIDAlphabet) {
				continue
			}
			out = append(out, nanoIDAlphabet[b])
		}
	}
	return string(out), nil
}
