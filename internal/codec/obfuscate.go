package codec

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
)

// Obfuscate XORs plain against key, cycling the key when it is shorter
// than the input. Applying it twice with the same key restores the input.
//
// This is obfuscation, not encryption: it hides fragment plaintext from a
// casual read of the stored row and nothing more. The scheme provides no
// confidentiality against anyone who knows the key convention and no
// integrity protection at all. The codes' unguessability rests on the
// fragment entropy and the admin passphrase, not on this transform.
func Obfuscate(plain, key []byte) []byte {
	out := make([]byte, len(plain))
	if len(key) == 0 {
		copy(out, plain)
		return out
	}
	for i := range plain {
		out[i] = plain[i] ^ key[i%len(key)]
	}
	return out
}

// DeriveFragment produces the 4-char code fragment for operator-supplied
// secret material: the plaintext is XOR-obfuscated with key, base64-encoded
// for printable embedding, then uppercased and filtered to the code
// alphabet. When the filtered text comes up short the remaining slots are
// backfilled from the raw XOR bytes so the result is always deterministic
// and always within Alphabet.
func DeriveFragment(plain, key string) string {
	ob := Obfuscate([]byte(plain), []byte(key))
	enc := strings.ToUpper(base64.StdEncoding.EncodeToString(ob))

	var b strings.Builder
	for i := 0; i < len(enc) && b.Len() < FragmentLen; i++ {
		if strings.IndexByte(Alphabet, enc[i]) >= 0 {
			b.WriteByte(enc[i])
		}
	}
	for i := 0; b.Len() < FragmentLen; i++ {
		var c byte = 'X'
		if len(ob) > 0 {
			c = Alphabet[int(ob[i%len(ob)])%len(Alphabet)]
		}
		b.WriteByte(c)
	}
	return b.String()
}

// RandomFragment returns a uniformly random 4-char fragment from Alphabet
// using crypto/rand.
func RandomFragment() (string, error) {
	buf := make([]byte, FragmentLen)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.New("read random fragment: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(buf), nil
}
