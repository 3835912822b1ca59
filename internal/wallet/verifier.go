// Package wallet recovers signer identities from EIP-191 personal-message
// signatures and checks the freshness of the signed payload.
package wallet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/readproof-dev/readproof/internal/domain"
	"github.com/readproof-dev/readproof/internal/errors"
)

// timestampMarker is the token every action template embeds. Because the
// timestamp sits inside the signed payload, a captured signature cannot be
// replayed with a fresher one.
const timestampMarker = "Timestamp:"

type Verifier struct {
	window time.Duration
	now    func() time.Time // override in tests
}

func New(window time.Duration) *Verifier {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &Verifier{window: window, now: time.Now}
}

// Verify reports whether signature over message recovers to claimed.
// Any malformed signature or recovery failure yields false, never a panic.
func (v *Verifier) Verify(message, signature string, claimed domain.Address) bool {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return false
	}
	sig = append([]byte(nil), sig...)
	// Wallets emit V as 27/28, libraries as 0/1. Accept both.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	if sig[crypto.RecoveryIDOffset] > 1 {
		return false
	}

	pub, err := crypto.SigToPub(textHash(message), sig)
	if err != nil {
		return false
	}
	recovered := crypto.PubkeyToAddress(*pub)
	return strings.EqualFold(recovered.Hex(), claimed)
}

// Freshness extracts the embedded millisecond timestamp and rejects messages
// outside the window in either direction (symmetric to tolerate clock skew).
func (v *Verifier) Freshness(message string) (time.Time, error) {
	idx := strings.Index(message, timestampMarker)
	if idx < 0 {
		return time.Time{}, errors.Replay("timestamp not found in message")
	}
	raw := message[idx+len(timestampMarker):]
	if nl := strings.IndexByte(raw, '\n'); nl >= 0 {
		raw = raw[:nl]
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return time.Time{}, errors.Replay("invalid timestamp format")
	}

	ts := time.UnixMilli(ms)
	if age := v.now().Sub(ts); age > v.window || age < -v.window {
		return time.Time{}, errors.Replay("timestamp too old or invalid")
	}
	return ts, nil
}

// HashMessage returns the EIP-191 digest of message as a 0x hex string.
// Stored with comments and attestations for audit.
func HashMessage(message string) string {
	return hexutil.Encode(textHash(message))
}

func textHash(message string) []byte {
	return crypto.Keccak256([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)))
}
