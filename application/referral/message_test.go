package referral

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divvi-xyz/divvi-sdk/go/internal/testutil"
	"github.com/divvi-xyz/divvi-sdk/go/wireformat"
)

func TestBuildAttributionMessage(t *testing.T) {
	at := time.UnixMilli(1718000000123)
	got := BuildAttributionMessage("6decb85d01abcd", 42220, at)
	assert.Equal(t,
		"Divvi Referral Attribution\nReferral Tag: 6decb85d01abcd\nChain ID: 42220\nTimestamp: 1718000000123",
		got)
}

func TestBuildAttributionMessage_TagIsRecoverable(t *testing.T) {
	tag, err := wireformat.EncodeReferralTag(wireformat.ReferralTagRequest{
		User:      testutil.User,
		Consumer:  testutil.Consumer,
		Providers: []string{testutil.Provider1},
	})
	require.NoError(t, err)

	msg := BuildAttributionMessage(tag, 1, time.Now())
	found, _, err := wireformat.FindReferralTag(msg)
	require.NoError(t, err)
	assert.Equal(t, testutil.User, found.User)
	assert.Equal(t, testutil.Consumer, found.Consumer)
	assert.Equal(t, []string{testutil.Provider1}, found.Providers)
}
