package midwestdental

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"
	"regexp"

	"dentalscrape/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// The site root serves an inline script that AES-decrypts a token and sets
// the result as the OCXS cookie before reloading the page. Browsers pass
// transparently; we replicate the decryption instead of executing the
// script. Reverse-engineered against a specific anti-bot page, expect this
// to break if the site changes its challenge.
var (
	challengeKeyRegex     = regexp.MustCompile(`a=toNumbers\("([a-f\d]+)"\)`)
	challengeIVRegex      = regexp.MustCompile(`b=toNumbers\("([a-f\d]+)"\)`)
	challengePayloadRegex = regexp.MustCompile(`c=toNumbers\("([a-f\d]+)"\)`)
)

const sessionCookieName = "OCXS"

// solveChallenge extracts the key/IV/payload hex triple from the challenge
// script and returns the session cookie value: the hex encoding of the
// AES-128-CBC decryption of the payload, no padding.
func solveChallenge(doc *goquery.Document) (string, error) {
	for _, script := range doc.Find("script").Nodes {
		text := htmlutil.GetText(script)

		keyMatch := challengeKeyRegex.FindStringSubmatch(text)
		ivMatch := challengeIVRegex.FindStringSubmatch(text)
		payloadMatch := challengePayloadRegex.FindStringSubmatch(text)
		if keyMatch == nil || ivMatch == nil || payloadMatch == nil {
			continue
		}

		key, err := hex.DecodeString(keyMatch[1])
		if err != nil {
			return "", fmt.Errorf("challenge key is not valid hex: %w", err)
		}
		iv, err := hex.DecodeString(ivMatch[1])
		if err != nil {
			return "", fmt.Errorf("challenge iv is not valid hex: %w", err)
		}
		payload, err := hex.DecodeString(payloadMatch[1])
		if err != nil {
			return "", fmt.Errorf("challenge payload is not valid hex: %w", err)
		}

		block, err := aes.NewCipher(key)
		if err != nil {
			return "", err
		}
		if len(iv) != aes.BlockSize {
			return "", fmt.Errorf("challenge iv is %d bytes, want %d", len(iv), aes.BlockSize)
		}
		if len(payload) == 0 || len(payload)%aes.BlockSize != 0 {
			return "", fmt.Errorf("challenge payload is %d bytes, not a multiple of %d", len(payload), aes.BlockSize)
		}

		plaintext := make([]byte, len(payload))
		cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, payload)
		return hex.EncodeToString(plaintext), nil
	}

	return "", fmt.Errorf("no session challenge script found")
}
