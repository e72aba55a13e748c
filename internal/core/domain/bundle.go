package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxStatus is the relayer's per-chain transaction status.
type TxStatus string

const (
	TxStatusPending   TxStatus = "Pending"
	TxStatusSuccess   TxStatus = "Success"
	TxStatusInvalid   TxStatus = "Invalid"
	TxStatusReverted  TxStatus = "Reverted"
	TxStatusCancelled TxStatus = "Cancelled"
)

// IsFailure reports the statuses that fail the whole bundle.
func (s TxStatus) IsFailure() bool {
	return s == TxStatusInvalid || s == TxStatusReverted || s == TxStatusCancelled
}

// Call is a contract invocation before it is wrapped for relaying.
type Call struct {
	ChainID int64          `json:"chain_id"`
	Target  common.Address `json:"target"`
	Value   *big.Int       `json:"value"`
	Data    []byte         `json:"data"`
}

// BundleCall is one per-chain entry of a relayer bundle. Data is 0x hex.
type BundleCall struct {
	ChainID int64          `json:"chain_id"`
	Target  common.Address `json:"target"`
	Data    string         `json:"data"`
	Value   *big.Int       `json:"value"`
}

// BundleReceipt is what the relayer returns for an accepted bundle.
type BundleReceipt struct {
	BundleID string
	TxIDs    []string
}

// TxReport is the relayer's view of one bundle transaction, in submission
// order.
type TxReport struct {
	Status      TxStatus
	TxHash      string
	BlockNumber int64
	Error       string
}

// PollAction is what the state machine does after one status check.
type PollAction int

const (
	PollContinue PollAction = iota
	PollConfirm
	PollFail
	PollTimeout
	PollCheckFailed
)

// PollDecision is the outcome of one poll attempt. Report is the first
// transaction on Confirm and the failing one on Fail.
type PollDecision struct {
	Action PollAction
	Report TxReport
}

// Terminal reports whether the decision ends the poll sequence.
func (d PollDecision) Terminal() bool {
	return d.Action != PollContinue
}

// EvaluatePoll applies the confirmation rules in order: all success
// confirms, any failure fails, an exhausted budget times out, otherwise keep
// polling. Transport errors and empty reports consume the same budget and
// end as a failed status check.
func EvaluatePoll(reports []TxReport, pollErr error, attempt, maxAttempts int) PollDecision {
	if pollErr != nil || len(reports) == 0 {
		if attempt >= maxAttempts {
			return PollDecision{Action: PollCheckFailed}
		}
		return PollDecision{Action: PollContinue}
	}

	allSuccess := true
	for _, r := range reports {
		if r.Status != TxStatusSuccess {
			allSuccess = false
			break
		}
	}
	if allSuccess {
		return PollDecision{Action: PollConfirm, Report: reports[0]}
	}

	for _, r := range reports {
		if r.Status.IsFailure() {
			return PollDecision{Action: PollFail, Report: r}
		}
	}

	if attempt >= maxAttempts {
		return PollDecision{Action: PollTimeout}
	}
	return PollDecision{Action: PollContinue}
}
