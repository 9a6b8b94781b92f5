package payment

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	receiptPrefix    = "receipt_order_"
	receiptSuffixLen = 5
	base36Digits     = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NewReceipt returns a display reference for an order: a base36 millisecond
// timestamp followed by a short random base36 suffix. It is not guaranteed
// unique and must not be used for idempotency.
func NewReceipt() string {
	return buildReceipt(time.Now(), rand.IntN)
}

func buildReceipt(now time.Time, intn func(int) int) string {
	var b strings.Builder
	b.Grow(len(receiptPrefix) + 9 + receiptSuffixLen)
	b.WriteString(receiptPrefix)
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 36))
	for i := 0; i < receiptSuffixLen; i++ {
		b.WriteByte(base36Digits[intn(len(base36Digits))])
	}
	return b.String()
}
