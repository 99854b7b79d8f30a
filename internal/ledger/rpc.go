package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/MintForge/server/internal/circuitbreaker"
	"github.com/MintForge/server/internal/errors"
	"github.com/MintForge/server/internal/metrics"
	"github.com/MintForge/server/internal/rpcutil"
)

// RPCLedger queries transactions through a Solana JSON-RPC endpoint.
// Calls run through the circuit breaker so a degraded endpoint fails
// fast instead of queueing requests.
type RPCLedger struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
	network    string
	breakers   *circuitbreaker.Manager
	metrics    *metrics.Metrics
}

// Options configures an RPCLedger.
type Options struct {
	RPCURL     string
	Commitment string
	Network    string
	Breakers   *circuitbreaker.Manager
	Metrics    *metrics.Metrics
}

// NewRPCLedger creates a ledger backed by a Solana RPC endpoint.
func NewRPCLedger(opts Options) *RPCLedger {
	return &RPCLedger{
		client:     rpc.New(opts.RPCURL),
		commitment: commitmentFromString(opts.Commitment),
		network:    opts.Network,
		breakers:   opts.Breakers,
		metrics:    opts.Metrics,
	}
}

// Transaction implements Ledger. The signature is validated before the
// network round trip so malformed input never reaches the endpoint.
func (l *RPCLedger) Transaction(ctx context.Context, signature string) (*TransactionRecord, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, &SignatureError{Signature: signature, Err: err}
	}

	maxVersion := uint64(0)
	opts := &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     l.commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	}

	out, err := l.execute(ctx, "getTransaction", func() (interface{}, error) {
		return l.client.GetTransaction(ctx, sig, opts)
	})
	if err != nil {
		// The RPC layer reports an unknown signature as a null result,
		// which solana-go surfaces as ErrNotFound.
		if err == rpc.ErrNotFound || strings.Contains(err.Error(), "not found") {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get transaction %s: %w", signature, err)
	}

	result, ok := out.(*rpc.GetTransactionResult)
	if !ok || result == nil {
		return nil, ErrNotFound
	}

	record := &TransactionRecord{
		Signature: signature,
		Slot:      result.Slot,
	}

	if result.Meta != nil {
		record.Failed = result.Meta.Err != nil
		record.PreBalances = result.Meta.PreBalances
		record.PostBalances = result.Meta.PostBalances
	}

	tx, err := result.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("decode transaction %s: %w", signature, err)
	}
	for _, key := range tx.Message.AccountKeys {
		record.AccountKeys = append(record.AccountKeys, key.String())
	}

	return record, nil
}

// Healthy implements Ledger using a lightweight slot query.
func (l *RPCLedger) Healthy(ctx context.Context) error {
	_, err := l.execute(ctx, "getSlot", func() (interface{}, error) {
		return l.client.GetSlot(ctx, l.commitment)
	})
	if err != nil {
		return fmt.Errorf("rpc health check: %w", err)
	}
	return nil
}

// Close implements Ledger.
func (l *RPCLedger) Close() error {
	return l.client.Close()
}

// execute runs an RPC call through the circuit breaker and records metrics.
// Transient transport errors are retried with backoff inside the breaker,
// so the breaker only counts calls that failed after retries.
func (l *RPCLedger) execute(ctx context.Context, method string, fn func() (interface{}, error)) (interface{}, error) {
	start := time.Now()

	retried := func() (interface{}, error) {
		return rpcutil.WithRetry(ctx, fn)
	}

	var out interface{}
	var err error
	if l.breakers != nil {
		out, err = l.breakers.Execute(circuitbreaker.ServiceSolanaRPC, retried)
	} else {
		out, err = retried()
	}

	if l.metrics != nil {
		l.metrics.ObserveRPCCall(method, l.network, time.Since(start), err)
	}
	return out, err
}

// SignatureError indicates the supplied signature is not valid base58.
type SignatureError struct {
	Signature string
	Err       error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("invalid transaction signature %q: %v", e.Signature, e.Err)
}

func (e *SignatureError) Unwrap() error {
	return e.Err
}

// Code maps the error to the API error taxonomy.
func (e *SignatureError) Code() errors.ErrorCode {
	return errors.ErrCodeInvalidSignature
}

// commitmentFromString converts a string to rpc.CommitmentType.
func commitmentFromString(value string) rpc.CommitmentType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "processed":
		return rpc.CommitmentProcessed
	case "confirmed", "":
		return rpc.CommitmentConfirmed
	case "finalized", "finalised":
		return rpc.CommitmentFinalized
	default:
		return rpc.CommitmentConfirmed
	}
}
