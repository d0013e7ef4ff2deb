package referral

import (
	"fmt"
	"time"
)

// AttributionMessageTitle is the first line of every signed attribution message.
const AttributionMessageTitle = "Divvi Referral Attribution"

// BuildAttributionMessage renders the text a user signs to attribute an
// off-chain action. The timestamp is written in Unix milliseconds.
func BuildAttributionMessage(tag string, chainID uint64, at time.Time) string {
	return fmt.Sprintf("%s\nReferral Tag: %s\nChain ID: %d\nTimestamp: %d",
		AttributionMessageTitle, tag, chainID, at.UnixMilli())
}
