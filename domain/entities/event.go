package entities

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// EventKind tells which proof an AttributionEvent carries.
type EventKind string

const (
	EventKindTransaction   EventKind = "transaction"
	EventKindSignedMessage EventKind = "signed_message"
)

// AttributionEvent is the off-chain record sent to the tracking endpoint after
// broadcast. It carries either a transaction hash or a message with its
// signature, never both. Events are constructed, sent once and discarded.
type AttributionEvent struct {
	// TxHash is the 0x-prefixed hash of a transaction whose call data ends with a tag.
	TxHash string `validate:"required_without=Message,excluded_with=Message,omitempty,startswith=0x,hexadecimal"`

	// Message is the signed text that embeds a referral tag.
	Message string `validate:"required_without=TxHash,excluded_with=TxHash"`

	// Signature is the 0x-prefixed signature over Message.
	Signature string `validate:"required_with=Message,excluded_with=TxHash,omitempty,startswith=0x,hexadecimal"`

	// BaseURL optionally overrides the endpoint for this event only.
	BaseURL string `validate:"omitempty,url"`

	// ChainID identifies the chain the transaction was sent to or the message refers to.
	ChainID uint64 `validate:"required"`
}

// NewTransactionEvent builds an event for a broadcast transaction.
func NewTransactionEvent(txHash string, chainID uint64) AttributionEvent {
	return AttributionEvent{TxHash: txHash, ChainID: chainID}
}

// NewSignedMessageEvent builds an event for a signed message.
func NewSignedMessageEvent(message, signature string, chainID uint64) AttributionEvent {
	return AttributionEvent{Message: message, Signature: signature, ChainID: chainID}
}

// Kind reports which proof the event carries.
func (e AttributionEvent) Kind() EventKind {
	if e.TxHash != "" {
		return EventKindTransaction
	}
	return EventKindSignedMessage
}

// Validate checks the event shape. The returned error names every failed field.
func (e AttributionEvent) Validate() error {
	err := validate.Struct(e)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}
