package state

import "time"

// History entry author types.
const (
	HistoryTypeUser  = "user"
	HistoryTypeAgent = "agent"
)

// MaxHistoryEntries bounds the in-state conversation history.
const MaxHistoryEntries = 10

// HistoryEntry is one line of bounded per-chat conversation history.
type HistoryEntry struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}

// FlowState is one two-slot collection flow (deposit or withdraw). A zero
// Amount and empty UserID mean the slot is unfilled.
type FlowState struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

// Reset clears both slots and deactivates the flow.
func (f *FlowState) Reset() {
	f.Active = false
	f.UserID = ""
	f.Amount = 0
}

// Complete reports whether both slots are filled.
func (f *FlowState) Complete() bool {
	return f.UserID != "" && f.Amount > 0
}

// AccountChangeState tracks the small user-ID-change sub-flow.
type AccountChangeState struct {
	Active bool   `json:"active"`
	NewID  string `json:"new_id"`
}

// DepositCheck records the last completed deposit inquiry.
type DepositCheck struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

// Conversation is the mutable per-chat state record. It is owned exclusively
// by the processing task holding the chat's re-entrancy lock.
type Conversation struct {
	ChatID string `json:"chat_id"`

	Language      string `json:"language"`
	UserID        string `json:"user_id"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	PhoneNumber   string `json:"phone_number"`
	Bank          string `json:"bank"`

	DepositAmount    int64          `json:"deposit_amount"`
	LastDepositCheck *DepositCheck  `json:"last_deposit_check,omitempty"`
	History          []HistoryEntry `json:"history"`

	IsDiscussingPromos bool `json:"is_discussing_promos"`

	Deposit       FlowState          `json:"deposit"`
	Withdraw      FlowState          `json:"withdraw"`
	AccountChange AccountChangeState `json:"account_change"`

	OffTopicWarnings int `json:"off_topic_warnings"`

	HasSentWelcome             bool `json:"has_sent_welcome"`
	HasSentTransferNotice      bool `json:"has_sent_transfer_notice"`
	HasReceivedCustomerMessage bool `json:"has_received_customer_message"`

	LastProcessedMessageID string    `json:"last_processed_message_id"`
	LastRecordedMessageID  string    `json:"last_recorded_message_id"`
	LastResponseAt         time.Time `json:"last_response_at"`
	Started                time.Time `json:"started"`
}

// AppendHistory records a message and evicts the oldest entries beyond the
// bound.
func (c *Conversation) AppendHistory(message, entryType string, now time.Time) {
	c.History = append(c.History, HistoryEntry{
		Message:   message,
		Timestamp: now,
		Type:      entryType,
	})
	if len(c.History) > MaxHistoryEntries {
		c.History = c.History[len(c.History)-MaxHistoryEntries:]
	}
}
