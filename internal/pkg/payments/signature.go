package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureTolerance is the maximum accepted age of a signed webhook
// delivery. Deliveries outside the window are rejected even when the MAC
// itself is correct, which bounds replay exposure.
const SignatureTolerance = 5 * time.Minute

var (
	ErrSignatureInvalid = errors.New("webhook signature invalid")
	ErrSignatureExpired = errors.New("webhook signature outside tolerance window")
)

// VerifySignature checks a processor signature header of the form
// "t=<unix>,v1=<hex>[,v1=<hex>...]" against the raw payload. The MAC is
// HMAC-SHA256 over "<t>.<payload>". Any matching v1 entry within the
// tolerance window passes.
func VerifySignature(payload []byte, signatureHeader, webhookSecret string, now time.Time) error {
	header := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if header == "" || secret == "" {
		return ErrSignatureInvalid
	}

	var timestamp int64
	var candidates [][]byte
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return ErrSignatureInvalid
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(kv[1])
			if err != nil {
				continue
			}
			candidates = append(candidates, sig)
		}
	}
	if timestamp == 0 || len(candidates) == 0 {
		return ErrSignatureInvalid
	}

	signedPayload := fmt.Sprintf("%d.%s", timestamp, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	expected := mac.Sum(nil)

	matched := false
	for _, sig := range candidates {
		if hmac.Equal(expected, sig) {
			matched = true
			break
		}
	}
	if !matched {
		return ErrSignatureInvalid
	}

	age := now.Sub(time.Unix(timestamp, 0))
	if age > SignatureTolerance || age < -SignatureTolerance {
		return ErrSignatureExpired
	}
	return nil
}

// SignPayload produces a signature header for the given payload, matching
// what VerifySignature accepts. Used by tests and local tooling.
func SignPayload(payload []byte, webhookSecret string, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}
